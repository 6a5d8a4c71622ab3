// Command admintoken mints an admin JWT for a wallet on the admin
// allowlist, for use against the /admin endpoints during development
// and operations work.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/wastewise/wastewise-api/internal/config"
	"github.com/wastewise/wastewise-api/internal/pkg/authz"
	"github.com/wastewise/wastewise-api/internal/pkg/jwt"
	"github.com/wastewise/wastewise-api/internal/pkg/walletaddr"
)

func main() {
	wallet := flag.String("wallet", "", "admin wallet address to issue the token for")
	flag.Parse()

	if *wallet == "" {
		log.Fatal("usage: admintoken -wallet 0x...")
	}
	if !walletaddr.Valid(*wallet) {
		log.Fatalf("invalid wallet address: %s", *wallet)
	}

	cfg := config.Load()
	normalized, err := walletaddr.Normalize(*wallet)
	if err != nil {
		log.Fatalf("invalid wallet address: %v", err)
	}

	policy := authz.NewAllowlistPolicy(cfg.AdminWallets)
	if !policy.Allow(normalized, authz.CapManageAchievements) &&
		!policy.Allow(normalized, authz.CapManagePool) &&
		!policy.Allow(normalized, authz.CapAdjustLedger) {
		log.Fatalf("wallet %s is not on the admin allowlist (set ADMIN_WALLETS)", walletaddr.Short(normalized))
	}

	svc := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)
	token, err := svc.GenerateAdminToken(normalized)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}

	fmt.Println(token)
}
