// Package auth signs the cookie that binds a browser to the session it created.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long a session ticket stays valid.
const DefaultTTL = 24 * time.Hour

var (
	ErrNoSecret      = errors.New("auth: empty secret")
	ErrInvalidTicket = errors.New("auth: invalid ticket")
)

const issuer = "matchplay"

// Tickets issues and verifies HS256 tokens whose subject is a session id.
type Tickets struct {
	secret []byte
	ttl    time.Duration
}

func NewTickets(secret string, ttl time.Duration) (*Tickets, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tickets{secret: []byte(secret), ttl: ttl}, nil
}

// TTL reports the lifetime of issued tickets.
func (t *Tickets) TTL() time.Duration { return t.ttl }

// Issue signs a ticket for sessionID that expires TTL after now.
func (t *Tickets) Issue(sessionID string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign ticket: %w", err)
	}
	return signed, nil
}

// Verify returns the session id a valid ticket was issued for.
func (t *Tickets) Verify(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: no subject", ErrInvalidTicket)
	}
	return claims.Subject, nil
}

// Allows reports whether raw is a valid ticket for sessionID.
func (t *Tickets) Allows(raw, sessionID string) bool {
	sub, err := t.Verify(raw)
	return err == nil && sub == sessionID
}
