package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	"github.com/obrentanasic/drs-projekat/internal/domain"
)

// AuthValidator validates the access JWT, rejects revoked tokens, and sets
// the claims in context (see ClaimsFromContext).
type AuthValidator struct {
	issuer    ports.TokenIssuer
	blacklist ports.TokenBlacklist
}

func NewAuthValidator(issuer ports.TokenIssuer, blacklist ports.TokenBlacklist) *AuthValidator {
	return &AuthValidator{issuer: issuer, blacklist: blacklist}
}

func (m *AuthValidator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			writeAuthErr(w, http.StatusUnauthorized, "missing or invalid authorization")
			return
		}
		tokenString := strings.TrimPrefix(auth, "Bearer ")
		claims, err := m.issuer.ValidateAccessToken(tokenString)
		if err != nil {
			writeAuthErr(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if m.blacklist != nil {
			revoked, err := m.blacklist.IsRevoked(r.Context(), claims.JTI)
			if err != nil || revoked {
				writeAuthErr(w, http.StatusUnauthorized, "invalid token")
				return
			}
		}
		ctx := WithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole allows only the listed roles through. Administrators pass every
// check since they outrank the other roles everywhere in the API.
func RequireRole(roles ...string) func(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles)+1)
	for _, role := range roles {
		allowed[role] = true
	}
	allowed[domain.RoleAdministrator] = true
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeAuthErr(w, http.StatusUnauthorized, "missing or invalid authorization")
				return
			}
			if !allowed[claims.Role] {
				writeAuthErr(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthErr(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
