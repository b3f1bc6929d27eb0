package dto

import "github.com/spec-kit/coworking/internal/domain"

// AdminRegisterRequest payload for creating another admin.
type AdminRegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type AdminResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func NewAdminResponse(p domain.AdminProfile) AdminResponse {
	return AdminResponse{ID: p.ID.String(), Email: p.Email}
}
