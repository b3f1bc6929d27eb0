package dto

import "github.com/spec-kit/coworking/internal/domain"

// ClientRegisterRequest payload for self-registration.
type ClientRegisterRequest struct {
	Name              string `json:"name" validate:"required,max=100"`
	Surname           string `json:"surname" validate:"required,max=100"`
	Patronymic        string `json:"patronymic" validate:"omitempty,max=100"`
	Email             string `json:"email" validate:"required,email,max=254"`
	Password          string `json:"password" validate:"required,min=8,max=72"`
	SendNotifications bool   `json:"send_notifications"`
}

type ClientResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Surname           string `json:"surname"`
	Patronymic        string `json:"patronymic,omitempty"`
	Email             string `json:"email"`
	SendNotifications bool   `json:"send_notifications"`
	IsInternal        bool   `json:"is_internal"`
	Verified          bool   `json:"verified"`
}

func NewClientResponse(p domain.ClientProfile) ClientResponse {
	return ClientResponse{
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

// WhoAmIResponse describes the caller resolved from the bearer token.
type WhoAmIResponse struct {
	Kind   string          `json:"kind"`
	Admin  *AdminResponse  `json:"admin,omitempty"`
	Client *ClientResponse `json:"client,omitempty"`
}
