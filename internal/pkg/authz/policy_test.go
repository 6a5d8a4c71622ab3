package authz_test

import (
	"testing"

	"github.com/wastewise/wastewise-api/internal/pkg/authz"
)

func TestAllowlistPolicy(t *testing.T) {
	policy := authz.NewAllowlistPolicy([]string{
		"0xAAAAaaaaAAAAaaaaAAAAaaaaAAAAaaaaAAAAaaaa",
		" 0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb ",
		"",
	})

	if !policy.Allow("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", authz.CapManagePool) {
		t.Fatal("expected allowlisted wallet to be allowed regardless of case")
	}
	if !policy.Allow("0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB", authz.CapAdjustLedger) {
		t.Fatal("expected trimmed wallet to be allowed")
	}
	if policy.Allow("0xcccccccccccccccccccccccccccccccccccccccc", authz.CapManageAchievements) {
		t.Fatal("expected unknown wallet to be denied")
	}
	if policy.Allow("", authz.CapManagePool) {
		t.Fatal("expected empty wallet to be denied")
	}
}
