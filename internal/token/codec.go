// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

// Package token implements the signed identity token codec.
//
// Tokens are compact HS256 JWTs carrying a subject id and role claim.
// Issue and Verify are pure apart from the wall-clock read: session
// bookkeeping and revocation live in the session directory, not here.
//
// Verification failures are typed: callers collapse every kind to
// "unauthenticated", but the kinds stay distinguishable for logging,
// metrics, and tests.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest accepted signing secret.
const MinSecretLength = 32

// VerifyErrorKind classifies a token verification failure.
type VerifyErrorKind string

const (
	// KindMalformed means the token could not be parsed at all.
	KindMalformed VerifyErrorKind = "malformed"

	// KindSignatureInvalid means the signature did not verify against the
	// server secret, including algorithm-confusion attempts.
	KindSignatureInvalid VerifyErrorKind = "signature_invalid"

	// KindExpired means the token parsed and verified but is past expiry
	// (or not yet valid).
	KindExpired VerifyErrorKind = "expired"
)

// VerifyError is a typed token verification failure.
type VerifyError struct {
	Kind VerifyErrorKind
	err  error
}

// Error implements the error interface.
func (e *VerifyError) Error() string {
	return fmt.Sprintf("token verification failed (%s): %v", e.Kind, e.err)
}

// Unwrap exposes the underlying parser error.
func (e *VerifyError) Unwrap() error {
	return e.err
}

// Identity is the verified content of a token.
type Identity struct {
	// SubjectID is the principal id the token was issued for.
	SubjectID string

	// Role is the role claim captured at issue time.
	Role string

	// ExpiresAt is the token expiry.
	ExpiresAt time.Time
}

// Claims is the JWT claim set for Lectern identity tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and verifies identity tokens.
type Codec struct {
	secret []byte
}

// NewCodec creates a token codec from the configured signing secret.
// An empty or short secret is a fatal configuration error: the server must
// not start, and there is no fallback secret.
func NewCodec(secret string) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("signing secret must be at least %d characters (got %d)",
			MinSecretLength, len(secret))
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Issue produces a signed token for the subject with the given role,
// valid from now until now+ttl.
func (c *Codec) Issue(subjectID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify decodes the token, checks the HS256 signature against the server
// secret, and checks expiry. On failure it returns a *VerifyError whose
// Kind distinguishes malformed input, signature mismatch, and expiry.
func (c *Codec) Verify(tokenString string) (*Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, &VerifyError{Kind: KindMalformed, err: errors.New("invalid token claims")}
	}
	if claims.Subject == "" {
		return nil, &VerifyError{Kind: KindMalformed, err: errors.New("missing subject claim")}
	}

	id := &Identity{
		SubjectID: claims.Subject,
		Role:      claims.Role,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// classify maps jwt parser errors onto VerifyError kinds.
func classify(err error) *VerifyError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return &VerifyError{Kind: KindExpired, err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return &VerifyError{Kind: KindSignatureInvalid, err: err}
	case errors.Is(err, jwt.ErrTokenMalformed):
		return &VerifyError{Kind: KindMalformed, err: err}
	default:
		// Unknown signing methods and key lookup failures land here.
		return &VerifyError{Kind: KindSignatureInvalid, err: err}
	}
}
