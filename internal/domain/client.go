package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client is a coworking visitor who books seats.
type Client struct {
	ID                 uuid.UUID
	Name               string
	Surname            string
	Patronymic         string
	Email              string
	PasswordHash       string
	LastPasswordChange time.Time
	SendNotifications  bool
	IsInternal         bool
	Verified           bool
	Deleted            bool
	CreatedAt          time.Time
}

// ClientProfile is the public projection of a Client.
type ClientProfile struct {
	ID                uuid.UUID
	Name              string
	Surname           string
	Patronymic        string
	Email             string
	SendNotifications bool
	IsInternal        bool
	Verified          bool
}

// Profile strips credentials and bookkeeping fields.
func (c *Client) Profile() ClientProfile {
	return ClientProfile{
		ID:                c.ID,
		Name:              c.Name,
		Surname:           c.Surname,
		Patronymic:        c.Patronymic,
		Email:             c.Email,
		SendNotifications: c.SendNotifications,
		IsInternal:        c.IsInternal,
		Verified:          c.Verified,
	}
}
