package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
)

// Token type claim values. Access and refresh tokens share the key pair, so
// the type claim is what keeps a refresh token out of the Authorization header.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenIssuer implements ports.TokenIssuer with RS256.
type TokenIssuer struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	audience   string
}

type platformClaims struct {
	jwt.RegisteredClaims
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
}

func NewTokenIssuer(privateKey *rsa.PrivateKey, issuer, audience string) *TokenIssuer {
	return &TokenIssuer{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
		issuer:     issuer,
		audience:   audience,
	}
}

func (t *TokenIssuer) IssueAccessToken(userID, role string, expiresInSeconds int64) (string, error) {
	return t.issue(userID, role, tokenTypeAccess, expiresInSeconds)
}

func (t *TokenIssuer) IssueRefreshToken(userID, role string, expiresInSeconds int64) (string, error) {
	return t.issue(userID, role, tokenTypeRefresh, expiresInSeconds)
}

func (t *TokenIssuer) issue(userID, role, tokenType string, expiresInSeconds int64) (string, error) {
	now := time.Now()
	claims := platformClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expiresInSeconds) * time.Second)),
		},
		Role:      role,
		TokenType: tokenType,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(t.privateKey)
}

func (t *TokenIssuer) ValidateAccessToken(tokenString string) (*ports.TokenClaims, error) {
	return t.parse(tokenString, tokenTypeAccess)
}

func (t *TokenIssuer) ValidateRefreshToken(tokenString string) (*ports.TokenClaims, error) {
	return t.parse(tokenString, tokenTypeRefresh)
}

func (t *TokenIssuer) parse(tokenString, wantType string) (*ports.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &platformClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.publicKey, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithAudience(t.audience))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*platformClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("token type %q presented where %q is required", claims.TokenType, wantType)
	}
	out := &ports.TokenClaims{
		UserID: claims.Subject,
		Role:   claims.Role,
		JTI:    claims.ID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
