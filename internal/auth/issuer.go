package auth

import (
	"time"

	"github.com/google/uuid"
)

// Issuer mints tokens for the entities of one identity domain.
type Issuer struct {
	key DomainKey
	now Clock
}

// NewIssuer builds an issuer. A nil clock means time.Now.
func NewIssuer(key DomainKey, now Clock) *Issuer {
	if now == nil {
		now = time.Now
	}
	return &Issuer{key: key, now: now}
}

// Issue signs a token for id that expires TokenLifetime from now.
func (i *Issuer) Issue(id uuid.UUID) (string, time.Time, error) {
	issuedAt := i.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(TokenLifetime)

	token, err := Encode(Claims{
		Subject:   id.String(),
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, i.key.Label, i.key.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}
