package rpc

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/coworking/internal/domain"
)

// ValidateTokenRequest asks a domain to verify one of its tokens.
type ValidateTokenRequest struct {
	Token string `cbor:"token"`
}

// EntityRequest addresses a single entity by id.
type EntityRequest struct {
	ID string `cbor:"id"`
}

// LoginRequest carries credentials for Login.
type LoginRequest struct {
	Email    string `cbor:"email"`
	Password string `cbor:"password"`
}

// ChangePasswordRequest replaces the password of the account with ID.
type ChangePasswordRequest struct {
	ID              string `cbor:"id"`
	CurrentPassword string `cbor:"current_password"`
	NewPassword     string `cbor:"new_password"`
}

// AdminRegisterRequest creates an admin account.
type AdminRegisterRequest struct {
	Email    string `cbor:"email"`
	Password string `cbor:"password"`
}

// ClientRegisterRequest creates a client account.
type ClientRegisterRequest struct {
	Name              string `cbor:"name"`
	Surname           string `cbor:"surname"`
	Patronymic        string `cbor:"patronymic,omitempty"`
	Email             string `cbor:"email"`
	Password          string `cbor:"password"`
	SendNotifications bool   `cbor:"send_notifications"`
}

// Empty is the response of calls that return nothing.
type Empty struct{}

// AdminResponse is the wire form of domain.AdminProfile.
type AdminResponse struct {
	ID    string `cbor:"id"`
	Email string `cbor:"email"`
}

// ClientResponse is the wire form of domain.ClientProfile.
type ClientResponse struct {
	ID                string `cbor:"id"`
	Name              string `cbor:"name"`
	Surname           string `cbor:"surname"`
	Patronymic        string `cbor:"patronymic,omitempty"`
	Email             string `cbor:"email"`
	SendNotifications bool   `cbor:"send_notifications"`
	IsInternal        bool   `cbor:"is_internal"`
	Verified          bool   `cbor:"verified"`
}

// AdminAuthResponse carries a freshly issued admin token.
type AdminAuthResponse struct {
	Token     string        `cbor:"token"`
	ExpiresAt int64         `cbor:"expires_at"`
	Admin     AdminResponse `cbor:"admin"`
}

// ClientAuthResponse carries a freshly issued client token.
type ClientAuthResponse struct {
	Token     string         `cbor:"token"`
	ExpiresAt int64          `cbor:"expires_at"`
	Client    ClientResponse `cbor:"client"`
}

// AuthResult is the decoded form of an auth response.
type AuthResult[P any] struct {
	Token     string
	ExpiresAt time.Time
	Profile   P
}

// NewAdminResponse converts an admin profile to its wire form.
func NewAdminResponse(p domain.AdminProfile) *AdminResponse {
	return &AdminResponse{ID: p.ID.String(), Email: p.Email}
}

// Profile converts the response back into a domain projection.
func (r *AdminResponse) Profile() (domain.AdminProfile, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return domain.AdminProfile{}, err
	}
	return domain.AdminProfile{ID: id, Email: r.Email}, nil
}

// NewClientResponse converts a client profile to its wire form.
func NewClientResponse(p domain.ClientProfile) *ClientResponse {
	return &ClientResponse{
		ID:                p.ID.String(),
		Name:              p.Name,
		Surname:           p.Surname,
		Patronymic:        p.Patronymic,
		Email:             p.Email,
		SendNotifications: p.SendNotifications,
		IsInternal:        p.IsInternal,
		Verified:          p.Verified,
	}
}

// Profile converts the response back into a domain projection.
func (r *ClientResponse) Profile() (domain.ClientProfile, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return domain.ClientProfile{}, err
	}
	return domain.ClientProfile{
		ID:                id,
		Name:              r.Name,
		Surname:           r.Surname,
		Patronymic:        r.Patronymic,
		Email:             r.Email,
		SendNotifications: r.SendNotifications,
		IsInternal:        r.IsInternal,
		Verified:          r.Verified,
	}, nil
}

// NewAdminAuthResponse pairs an admin token with its profile.
func NewAdminAuthResponse(token string, expiresAt time.Time, p domain.AdminProfile) *AdminAuthResponse {
	return &AdminAuthResponse{Token: token, ExpiresAt: expiresAt.Unix(), Admin: *NewAdminResponse(p)}
}

// NewClientAuthResponse pairs a client token with its profile.
func NewClientAuthResponse(token string, expiresAt time.Time, p domain.ClientProfile) *ClientAuthResponse {
	return &ClientAuthResponse{Token: token, ExpiresAt: expiresAt.Unix(), Client: *NewClientResponse(p)}
}
