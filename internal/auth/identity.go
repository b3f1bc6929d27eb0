package auth

import (
	"github.com/google/uuid"

	"github.com/spec-kit/coworking/internal/domain"
	apperrors "github.com/spec-kit/coworking/pkg/util"
)

// Identity is the caller resolved for a single request: either a client or
// an admin, tagged with the domain that verified the token.
type Identity struct {
	kind   domain.Label
	client domain.ClientProfile
	admin  domain.AdminProfile
}

// NewClientIdentity wraps a client profile.
func NewClientIdentity(profile domain.ClientProfile) Identity {
	return Identity{kind: domain.LabelClient, client: profile}
}

// NewAdminIdentity wraps an admin profile.
func NewAdminIdentity(profile domain.AdminProfile) Identity {
	return Identity{kind: domain.LabelAdmin, admin: profile}
}

// Kind returns the domain that validated the token.
func (i Identity) Kind() domain.Label {
	return i.kind
}

// ID returns the entity id regardless of kind.
func (i Identity) ID() uuid.UUID {
	if i.kind == domain.LabelAdmin {
		return i.admin.ID
	}
	return i.client.ID
}

// AsClient unwraps a client identity.
func (i Identity) AsClient() (domain.ClientProfile, error) {
	if i.kind != domain.LabelClient {
		return domain.ClientProfile{}, apperrors.NewIncorrectTokenType()
	}
	return i.client, nil
}

// AsAdmin unwraps an admin identity.
func (i Identity) AsAdmin() (domain.AdminProfile, error) {
	if i.kind != domain.LabelAdmin {
		return domain.AdminProfile{}, apperrors.NewIncorrectTokenType()
	}
	return i.admin, nil
}
