// Package authz holds the authorization policy the admin surface queries.
// The policy is injected from configuration rather than baked into handlers,
// so deployments can swap the allowlist without touching domain code.
package authz

import "strings"

// Capability names an administrative action.
type Capability string

const (
	CapManageAchievements Capability = "manage_achievements"
	CapManagePool         Capability = "manage_pool"
	CapAdjustLedger       Capability = "adjust_ledger"
)

// Policy answers whether a wallet may exercise a capability.
type Policy interface {
	Allow(wallet string, cap Capability) bool
}

// AllowlistPolicy grants every capability to a fixed set of admin wallets.
type AllowlistPolicy struct {
	wallets map[string]bool
}

// NewAllowlistPolicy builds a policy from configured admin wallet addresses.
// Addresses are compared case-insensitively.
func NewAllowlistPolicy(wallets []string) *AllowlistPolicy {
	m := make(map[string]bool, len(wallets))
	for _, w := range wallets {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			m[w] = true
		}
	}
	return &AllowlistPolicy{wallets: m}
}

func (p *AllowlistPolicy) Allow(wallet string, _ Capability) bool {
	return p.wallets[strings.ToLower(wallet)]
}
