package auth

import (
	"context"
	"time"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	domerrors "github.com/obrentanasic/drs-projekat/internal/domain/errors"
)

type LogoutInput struct {
	// AccessClaims are the already-validated claims of the access token
	// that authorized the request.
	AccessClaims *ports.TokenClaims
	RefreshToken string
}

type Logout struct {
	issuer    ports.TokenIssuer
	blacklist ports.TokenBlacklist
}

func NewLogout(issuer ports.TokenIssuer, blacklist ports.TokenBlacklist) *Logout {
	return &Logout{issuer: issuer, blacklist: blacklist}
}

// Execute revokes both tokens of the session. The refresh token is optional;
// clients that lost it still get their access token revoked.
func (uc *Logout) Execute(ctx context.Context, input LogoutInput) error {
	if input.AccessClaims == nil {
		return domerrors.ErrInvalidToken
	}
	if err := uc.revoke(ctx, input.AccessClaims); err != nil {
		return err
	}
	if input.RefreshToken == "" {
		return nil
	}
	claims, err := uc.issuer.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		// An expired or garbled refresh token needs no revocation.
		return nil
	}
	return uc.revoke(ctx, claims)
}

func (uc *Logout) revoke(ctx context.Context, claims *ports.TokenClaims) error {
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return uc.blacklist.Revoke(ctx, claims.JTI, ttl)
}
