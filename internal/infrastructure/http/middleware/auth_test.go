package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	"github.com/obrentanasic/drs-projekat/internal/domain"
)

type stubIssuer struct {
	claims map[string]*ports.TokenClaims
}

func (s *stubIssuer) IssueAccessToken(userID, role string, exp int64) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubIssuer) IssueRefreshToken(userID, role string, exp int64) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubIssuer) ValidateAccessToken(token string) (*ports.TokenClaims, error) {
	if c, ok := s.claims[token]; ok {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

func (s *stubIssuer) ValidateRefreshToken(token string) (*ports.TokenClaims, error) {
	return nil, errors.New("invalid token")
}

type stubBlacklist struct {
	revoked map[string]bool
	err     error
}

func (s *stubBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	s.revoked[jti] = true
	return nil
}

func (s *stubBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[jti], nil
}

func okHandler(t *testing.T, gotClaims **ports.TokenClaims) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotClaims = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthValidator(t *testing.T) {
	issuer := &stubIssuer{claims: map[string]*ports.TokenClaims{
		"good": {UserID: "u1", Role: domain.RolePlayer, JTI: "jti-1"},
	}}
	blacklist := &stubBlacklist{revoked: map[string]bool{}}
	validator := NewAuthValidator(issuer, blacklist)

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		var claims *ports.TokenClaims
		validator.Handler(okHandler(t, &claims)).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		var claims *ports.TokenClaims
		validator.Handler(okHandler(t, &claims)).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("valid token sets claims", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		var claims *ports.TokenClaims
		validator.Handler(okHandler(t, &claims)).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if claims == nil || claims.UserID != "u1" {
			t.Fatalf("claims = %+v, want UserID u1", claims)
		}
	})

	t.Run("revoked token rejected", func(t *testing.T) {
		blacklist.revoked["jti-1"] = true
		defer delete(blacklist.revoked, "jti-1")
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		var claims *ports.TokenClaims
		validator.Handler(okHandler(t, &claims)).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("blacklist error fails closed", func(t *testing.T) {
		blacklist.err = errors.New("redis down")
		defer func() { blacklist.err = nil }()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		var claims *ports.TokenClaims
		validator.Handler(okHandler(t, &claims)).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	serve := func(role string, claims *ports.TokenClaims) int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if claims != nil {
			req = req.WithContext(WithClaims(req.Context(), claims))
		}
		handler := RequireRole(role)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := serve(domain.RoleModerator, nil); got != http.StatusUnauthorized {
		t.Errorf("no claims: status = %d, want 401", got)
	}
	if got := serve(domain.RoleModerator, &ports.TokenClaims{Role: domain.RolePlayer}); got != http.StatusForbidden {
		t.Errorf("wrong role: status = %d, want 403", got)
	}
	if got := serve(domain.RoleModerator, &ports.TokenClaims{Role: domain.RoleModerator}); got != http.StatusOK {
		t.Errorf("matching role: status = %d, want 200", got)
	}
	if got := serve(domain.RoleModerator, &ports.TokenClaims{Role: domain.RoleAdministrator}); got != http.StatusOK {
		t.Errorf("administrator: status = %d, want 200", got)
	}
}
