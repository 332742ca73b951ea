// Package jwt issues the access/refresh token pair stored with a session.
package jwt

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	"github.com/bookms/bookms-admin/internal/ports"
)

// DefaultTTL is the access token lifetime when none is configured.
const DefaultTTL = time.Hour

// Options configures an Issuer.
type Options struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Now    func() time.Time
}

// Issuer signs HS256 access tokens and generates random refresh tokens.
// Tokens are opaque to the dashboard; nothing validates them on the way back in.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

var _ ports.TokenIssuer = (*Issuer)(nil)

// NewIssuer validates opts and returns an Issuer.
func NewIssuer(opts Options) (*Issuer, error) {
	if len(opts.Secret) < 16 {
		return nil, errors.New("token secret must be at least 16 bytes")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: opts.Secret, issuer: opts.Issuer, ttl: ttl, now: now}, nil
}

// Claims is the access token payload.
type Claims struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	Provider string `json:"provider,omitempty"`
	jwt.RegisteredClaims
}

func (i *Issuer) Issue(ctx context.Context, id domainauth.Identity) (domainauth.Tokens, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.Tokens{}, err
	}
	now := i.now()
	claims := Claims{
		Email:    id.Email,
		Role:     id.Role.String(),
		Provider: string(id.Provider),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return domainauth.Tokens{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh := make([]byte, 32)
	if _, err := rand.Read(refresh); err != nil {
		return domainauth.Tokens{}, fmt.Errorf("generate refresh token: %w", err)
	}
	return domainauth.Tokens{
		AccessToken:  access,
		RefreshToken: base64.RawURLEncoding.EncodeToString(refresh),
	}, nil
}
