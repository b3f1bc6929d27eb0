package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coworking/internal/api/dto"
	"github.com/spec-kit/coworking/internal/auth"
	"github.com/spec-kit/coworking/internal/domain"
	"github.com/spec-kit/coworking/internal/rpc"
	apperrors "github.com/spec-kit/coworking/pkg/util"
)

// AdminHandler exposes the admin domain over HTTP.
type AdminHandler struct {
	admins AdminGateway
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admins AdminGateway) *AdminHandler {
	return &AdminHandler{admins: admins}
}

// Register handles POST /api/admin/register. Only admins create admins.
func (h *AdminHandler) Register(c *fiber.Ctx) error {
	if _, err := currentAdmin(c); err != nil {
		return err
	}
	var req dto.AdminRegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.admins.Register(c.UserContext(), &rpc.AdminRegisterRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		return apperrors.FromStatus(err)
	}
	return c.Status(http.StatusCreated).JSON(adminAuthBody(result))
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.admins.Login(c.UserContext(), &rpc.LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		return apperrors.FromStatus(err)
	}
	return c.JSON(adminAuthBody(result))
}

// Me handles GET /api/admin.
func (h *AdminHandler) Me(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAdminResponse(admin)})
}

// GetByID handles GET /api/admins/:id.
func (h *AdminHandler) GetByID(c *fiber.Ctx) error {
	if _, err := currentAdmin(c); err != nil {
		return err
	}
	admin, err := h.admins.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperrors.FromStatus(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewAdminResponse(admin)})
}

// ChangePassword handles PUT /api/admin/password.
func (h *AdminHandler) ChangePassword(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return err
	}
	var req dto.PasswordChangeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.admins.ChangePassword(c.UserContext(), &rpc.ChangePasswordRequest{
		ID:              admin.ID.String(),
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return apperrors.FromStatus(err)
	}
	return c.JSON(adminAuthBody(result))
}

// Delete handles DELETE /api/admin.
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return err
	}
	if err := h.admins.Delete(c.UserContext(), admin.ID.String()); err != nil {
		return apperrors.FromStatus(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func adminAuthBody(result rpc.AuthResult[domain.AdminProfile]) fiber.Map {
	return fiber.Map{
		"data": fiber.Map{
			"admin": dto.NewAdminResponse(result.Profile),
			"auth":  dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
		},
	}
}

func currentIdentity(c *fiber.Ctx) (auth.Identity, error) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return auth.Identity{}, apperrors.NewNoAuthorizationHeader()
	}
	return identity, nil
}

func currentAdmin(c *fiber.Ctx) (domain.AdminProfile, error) {
	identity, err := currentIdentity(c)
	if err != nil {
		return domain.AdminProfile{}, err
	}
	return identity.AsAdmin()
}

func currentClient(c *fiber.Ctx) (domain.ClientProfile, error) {
	identity, err := currentIdentity(c)
	if err != nil {
		return domain.ClientProfile{}, err
	}
	return identity.AsClient()
}
