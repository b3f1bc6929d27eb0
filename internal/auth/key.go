package auth

import (
	"fmt"
	"time"

	"github.com/spec-kit/coworking/internal/domain"
)

// DomainKey is the signing material owned by one identity domain. It is
// built once at process start and shared read-only by the domain's Issuer
// and Validator.
type DomainKey struct {
	Label  domain.Label
	secret []byte
}

// NewDomainKey validates secret and binds it to label.
func NewDomainKey(label domain.Label, secret string) (DomainKey, error) {
	if _, ok := domain.ParseLabel(string(label)); !ok {
		return DomainKey{}, fmt.Errorf("unknown domain label %q", label)
	}
	if len(secret) < domain.MinSecretLength {
		return DomainKey{}, fmt.Errorf("%s signing secret must be at least %d bytes", label, domain.MinSecretLength)
	}
	return DomainKey{Label: label, secret: []byte(secret)}, nil
}

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time
