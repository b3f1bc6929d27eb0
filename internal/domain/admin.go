package domain

import (
	"time"

	"github.com/google/uuid"
)

// Admin is a coworking operator account.
type Admin struct {
	ID                 uuid.UUID
	Email              string
	PasswordHash       string
	LastPasswordChange time.Time
	Deleted            bool
	CreatedAt          time.Time
}

// AdminProfile is the public projection of an Admin.
type AdminProfile struct {
	ID    uuid.UUID
	Email string
}

// Profile strips credentials and bookkeeping fields.
func (a *Admin) Profile() AdminProfile {
	return AdminProfile{ID: a.ID, Email: a.Email}
}
