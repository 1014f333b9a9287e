package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/obrentanasic/drs-projekat/internal/domain"
)

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	return NewTokenIssuer(key, "quizhub", "quizhub")
}

func TestAccessTokenRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t)

	token, err := issuer.IssueAccessToken("user-1", domain.RoleModerator, 900)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := issuer.ValidateAccessToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "user-1" || claims.Role != domain.RoleModerator {
		t.Errorf("claims = %+v", claims)
	}
	if claims.JTI == "" {
		t.Error("JTI missing")
	}
	if claims.ExpiresAt.IsZero() {
		t.Error("ExpiresAt missing")
	}
}

func TestTokenTypesAreDistinct(t *testing.T) {
	issuer := newTestIssuer(t)

	refresh, err := issuer.IssueRefreshToken("user-1", domain.RolePlayer, 3600)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := issuer.ValidateAccessToken(refresh); err == nil {
		t.Error("refresh token accepted as access token")
	}

	access, err := issuer.IssueAccessToken("user-1", domain.RolePlayer, 900)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := issuer.ValidateRefreshToken(access); err == nil {
		t.Error("access token accepted as refresh token")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	issuer := newTestIssuer(t)

	token, err := issuer.IssueAccessToken("user-1", domain.RolePlayer, -60)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := issuer.ValidateAccessToken(token); err == nil {
		t.Error("expired token accepted")
	}
}

func TestForeignKeyRejected(t *testing.T) {
	issuer := newTestIssuer(t)
	other := newTestIssuer(t)

	token, err := other.IssueAccessToken("user-1", domain.RolePlayer, 900)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := issuer.ValidateAccessToken(token); err == nil {
		t.Error("token signed by a different key accepted")
	}
}
