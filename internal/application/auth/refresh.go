package auth

import (
	"context"
	"time"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	"github.com/obrentanasic/drs-projekat/internal/domain"
	domerrors "github.com/obrentanasic/drs-projekat/internal/domain/errors"
)

type RefreshInput struct {
	RefreshToken string
}

type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

type Refresh struct {
	users      ports.UserRepository
	issuer     ports.TokenIssuer
	blacklist  ports.TokenBlacklist
	accessExp  int64
	refreshExp int64
	now        func() time.Time
}

func NewRefresh(users ports.UserRepository, issuer ports.TokenIssuer, blacklist ports.TokenBlacklist, accessExp, refreshExp int64) *Refresh {
	if accessExp <= 0 {
		accessExp = DefaultAccessTokenExpiry
	}
	if refreshExp <= 0 {
		refreshExp = DefaultRefreshTokenExpiry
	}
	return &Refresh{
		users:      users,
		issuer:     issuer,
		blacklist:  blacklist,
		accessExp:  accessExp,
		refreshExp: refreshExp,
		now:        time.Now,
	}
}

func (uc *Refresh) Execute(ctx context.Context, input RefreshInput) (*RefreshResult, error) {
	if input.RefreshToken == "" {
		return nil, domerrors.ErrInvalidToken
	}
	claims, err := uc.issuer.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, domerrors.ErrInvalidToken
	}
	revoked, err := uc.blacklist.IsRevoked(ctx, claims.JTI)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domerrors.ErrInvalidToken
	}

	// Role may have changed since the token was issued, so re-read it.
	userID, err := domain.ParseUserID(claims.UserID)
	if err != nil {
		return nil, domerrors.ErrInvalidToken
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrInvalidToken
	}
	if user.IsBlocked(uc.now()) {
		return nil, domerrors.ErrAccountDisabled
	}

	// Rotation: the presented token is spent the moment it succeeds.
	if ttl := time.Until(claims.ExpiresAt); ttl > 0 {
		if err := uc.blacklist.Revoke(ctx, claims.JTI, ttl); err != nil {
			return nil, err
		}
	}

	accessToken, err := uc.issuer.IssueAccessToken(user.ID.String(), user.Role, uc.accessExp)
	if err != nil {
		return nil, err
	}
	refreshToken, err := uc.issuer.IssueRefreshToken(user.ID.String(), user.Role, uc.refreshExp)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    uc.accessExp,
	}, nil
}
