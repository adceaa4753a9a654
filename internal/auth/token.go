// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskloom Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// Token error kinds. Both collapse to ErrUnauthenticated at the service
// layer; they stay distinct here for diagnosability.
var (
	// ErrTokenInvalid is returned when a token is malformed, its
	// signature does not verify, or its algorithm does not match.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenExpired is returned when a structurally valid token has
	// passed its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// TokenConfig is the process-wide signing configuration, loaded once at
// startup. Rotating the secret invalidates all previously issued tokens.
type TokenConfig struct {
	Secret    string
	Algorithm string // HMAC family: HS256, HS384 or HS512
	TTL       time.Duration
}

// TokenCodec issues and verifies signed, time-bound access tokens.
// A zero-value codec is not usable; construct with NewTokenCodec.
// The codec is stateless and safe for concurrent use.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec creates a TokenCodec from configuration.
func NewTokenCodec(cfg TokenConfig) (*TokenCodec, error) {
	if cfg.Secret == "" {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").Errorf("signing secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").
			With("ttl", cfg.TTL.String()).
			Errorf("token ttl must be positive")
	}
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if method == nil {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").
			With("algorithm", cfg.Algorithm).
			Errorf("unknown signing algorithm %q", cfg.Algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").
			With("algorithm", cfg.Algorithm).
			Errorf("signing algorithm %q is not in the HMAC family", cfg.Algorithm)
	}

	return &TokenCodec{
		secret: []byte(cfg.Secret),
		method: method,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// WithClock returns a copy of the codec that reads time from now.
// Tests use this to freeze or advance the clock deterministically.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	clone := *c
	clone.now = now
	return &clone
}

// Issue creates a signed token asserting the given subject, expiring
// ttl from the codec's current clock reading.
func (c *TokenCodec) Issue(subject string) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Parse verifies a token's signature, algorithm, and expiry, returning
// the embedded claims. Failures wrap ErrTokenExpired or ErrTokenInvalid.
func (c *TokenCodec) Parse(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			if t.Method.Alg() != c.method.Alg() {
				return nil, oops.Code("TOKEN_ALG_MISMATCH").
					With("alg", t.Header["alg"]).
					Errorf("unexpected signing method")
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, oops.Code("TOKEN_EXPIRED").
				With("cause", err.Error()).
				Wrap(ErrTokenExpired)
		}
		return nil, oops.Code("TOKEN_INVALID").
			With("cause", err.Error()).
			Wrap(ErrTokenInvalid)
	}
	return claims, nil
}
