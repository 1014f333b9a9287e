package auth

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	"github.com/obrentanasic/drs-projekat/internal/domain"
	domerrors "github.com/obrentanasic/drs-projekat/internal/domain/errors"
	"github.com/obrentanasic/drs-projekat/internal/throttle"
)

const (
	DefaultAccessTokenExpiry  = 900    // 15 min
	DefaultRefreshTokenExpiry = 604800 // 7 days
)

type LoginInput struct {
	Email    string
	Password string
	// IP is the caller's remote address, throttled independently of the
	// email so a single host cannot spray many accounts.
	IP string
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	User         *domain.User
}

type Login struct {
	users      ports.UserRepository
	hasher     ports.PasswordHasher
	issuer     ports.TokenIssuer
	throttle   *throttle.Service
	attempts   ports.LoginAttemptRepository
	log        zerolog.Logger
	accessExp  int64
	refreshExp int64
	now        func() time.Time
}

func NewLogin(users ports.UserRepository, hasher ports.PasswordHasher, issuer ports.TokenIssuer, throttleSvc *throttle.Service, attempts ports.LoginAttemptRepository, log zerolog.Logger, accessExp, refreshExp int64) *Login {
	if accessExp <= 0 {
		accessExp = DefaultAccessTokenExpiry
	}
	if refreshExp <= 0 {
		refreshExp = DefaultRefreshTokenExpiry
	}
	return &Login{
		users:      users,
		hasher:     hasher,
		issuer:     issuer,
		throttle:   throttleSvc,
		attempts:   attempts,
		log:        log,
		accessExp:  accessExp,
		refreshExp: refreshExp,
		now:        time.Now,
	}
}

func (uc *Login) Execute(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := SanitizeEmail(input.Email)
	if email == "" {
		return nil, domerrors.ErrInvalidCredentials
	}

	dec, err := uc.throttle.CheckBlocked(ctx, uc.identifiers(email, input.IP)...)
	if err != nil {
		return nil, err
	}
	if dec.Blocked {
		uc.audit(ctx, email, input.IP, domain.AttemptBlocked)
		return nil, &domerrors.AccountLockedError{
			Identifier:       dec.Identifier,
			RemainingSeconds: dec.RemainingSeconds,
		}
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !uc.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, uc.onFailure(ctx, email, input.IP)
	}
	if user.IsBlocked(uc.now()) {
		uc.audit(ctx, email, input.IP, domain.AttemptFailure)
		return nil, domerrors.ErrAccountDisabled
	}

	for _, id := range uc.identifiers(email, input.IP) {
		if err := uc.throttle.RecordSuccess(ctx, id); err != nil {
			uc.log.Warn().Err(err).Str("identifier", id).Msg("failed to clear throttle record")
		}
	}
	uc.audit(ctx, email, input.IP, domain.AttemptSuccess)

	accessToken, err := uc.issuer.IssueAccessToken(user.ID.String(), user.Role, uc.accessExp)
	if err != nil {
		return nil, err
	}
	refreshToken, err := uc.issuer.IssueRefreshToken(user.ID.String(), user.Role, uc.refreshExp)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    uc.accessExp,
		User:         user,
	}, nil
}

// onFailure counts the failed attempt against every identifier and decides
// whether the caller sees attempts-left or a lockout. Wrong password and
// unknown account take the same path so the responses are indistinguishable.
func (uc *Login) onFailure(ctx context.Context, email, ip string) error {
	uc.audit(ctx, email, ip, domain.AttemptFailure)

	emailCount := 0
	for _, id := range uc.identifiers(email, ip) {
		count, err := uc.throttle.RecordFailure(ctx, id)
		if err != nil {
			uc.log.Warn().Err(err).Str("identifier", id).Msg("failed to record login failure")
			continue
		}
		if id == email {
			emailCount = count
		}
	}

	if dec, err := uc.throttle.CheckBlocked(ctx, uc.identifiers(email, ip)...); err == nil && dec.Blocked {
		return &domerrors.AccountLockedError{
			Identifier:       dec.Identifier,
			RemainingSeconds: dec.RemainingSeconds,
		}
	}
	return &domerrors.CredentialsError{AttemptsLeft: uc.throttle.AttemptsRemaining(emailCount)}
}

func (uc *Login) identifiers(email, ip string) []string {
	ids := []string{email}
	if ip != "" {
		ids = append(ids, ip)
	}
	return ids
}

// audit appends to the login history; persistence failures are logged and
// swallowed so the audit trail can never break a login.
func (uc *Login) audit(ctx context.Context, email, ip, outcome string) {
	if uc.attempts == nil {
		return
	}
	attempt := &domain.LoginAttempt{
		Email:     email,
		IP:        ip,
		Outcome:   outcome,
		CreatedAt: uc.now(),
	}
	if err := uc.attempts.Record(ctx, attempt); err != nil {
		uc.log.Warn().Err(err).Str("email", email).Msg("failed to record login attempt")
	}
}
