package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coworking/internal/api/dto"
	"github.com/spec-kit/coworking/internal/domain"
)

// IdentityHandler describes the resolved caller.
type IdentityHandler struct{}

// NewIdentityHandler constructs handler.
func NewIdentityHandler() *IdentityHandler {
	return &IdentityHandler{}
}

// WhoAmI handles GET /api/whoami.
func (h *IdentityHandler) WhoAmI(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	resp := dto.WhoAmIResponse{Kind: identity.Kind().String()}
	switch identity.Kind() {
	case domain.LabelAdmin:
		admin, err := identity.AsAdmin()
		if err != nil {
			return err
		}
		profile := dto.NewAdminResponse(admin)
		resp.Admin = &profile
	case domain.LabelClient:
		client, err := identity.AsClient()
		if err != nil {
			return err
		}
		profile := dto.NewClientResponse(client)
		resp.Client = &profile
	}
	return c.JSON(fiber.Map{"data": resp})
}
