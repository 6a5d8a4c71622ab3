package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/wastewise/wastewise-api/internal/pkg/authz"
	"github.com/wastewise/wastewise-api/internal/pkg/jwt"
	"github.com/wastewise/wastewise-api/internal/pkg/response"
)

type contextKey string

const AdminWalletKey contextKey = "admin_wallet"

// AdminAuth returns middleware that validates admin session tokens and
// checks the authorization policy for the given capability.
func AdminAuth(jwtService *jwt.Service, policy authz.Policy, cap authz.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := jwtService.ValidateAdminToken(parts[1])
			if err != nil {
				if err == jwt.ErrExpiredToken {
					response.Unauthorized(w, "Token expired")
				} else {
					response.Unauthorized(w, "Invalid token")
				}
				return
			}

			if !policy.Allow(claims.Wallet, cap) {
				response.Forbidden(w, "Insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), AdminWalletKey, claims.Wallet)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAdminWallet extracts the authenticated admin wallet from context
func GetAdminWallet(ctx context.Context) string {
	if wallet, ok := ctx.Value(AdminWalletKey).(string); ok {
		return wallet
	}
	return ""
}
