package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coworking/internal/api/dto"
	"github.com/spec-kit/coworking/internal/domain"
	"github.com/spec-kit/coworking/internal/rpc"
	apperrors "github.com/spec-kit/coworking/pkg/util"
)

// ClientHandler exposes the client domain over HTTP.
type ClientHandler struct {
	clients ClientGateway
}

// NewClientHandler constructs handler.
func NewClientHandler(clients ClientGateway) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// Register handles POST /api/client/register.
func (h *ClientHandler) Register(c *fiber.Ctx) error {
	var req dto.ClientRegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.clients.Register(c.UserContext(), &rpc.ClientRegisterRequest{
		Name:              req.Name,
		Surname:           req.Surname,
		Patronymic:        req.Patronymic,
		Email:             req.Email,
		Password:          req.Password,
		SendNotifications: req.SendNotifications,
	})
	if err != nil {
		return apperrors.FromStatus(err)
	}
	return c.Status(http.StatusCreated).JSON(clientAuthBody(result))
}

// Login handles POST /api/client/login.
func (h *ClientHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.clients.Login(c.UserContext(), &rpc.LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		return apperrors.FromStatus(err)
	}
	return c.JSON(clientAuthBody(result))
}

// Me handles GET /api/client.
func (h *ClientHandler) Me(c *fiber.Ctx) error {
	client, err := currentClient(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewClientResponse(client)})
}

// GetByID handles GET /api/clients/:id. Admins read any client; a client
// reads only itself and gets not_found for anyone else.
func (h *ClientHandler) GetByID(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id := c.Params("id")

	if identity.Kind() == domain.LabelClient {
		self, err := identity.AsClient()
		if err != nil {
			return err
		}
		if self.ID.String() != id {
			return apperrors.NewNotFound()
		}
	}

	client, err := h.clients.Get(c.UserContext(), id)
	if err != nil {
		return apperrors.FromStatus(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewClientResponse(client)})
}

// ChangePassword handles PUT /api/client/password.
func (h *ClientHandler) ChangePassword(c *fiber.Ctx) error {
	client, err := currentClient(c)
	if err != nil {
		return err
	}
	var req dto.PasswordChangeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.clients.ChangePassword(c.UserContext(), &rpc.ChangePasswordRequest{
		ID:              client.ID.String(),
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return apperrors.FromStatus(err)
	}
	return c.JSON(clientAuthBody(result))
}

// Delete handles DELETE /api/client.
func (h *ClientHandler) Delete(c *fiber.Ctx) error {
	client, err := currentClient(c)
	if err != nil {
		return err
	}
	if err := h.clients.Delete(c.UserContext(), client.ID.String()); err != nil {
		return apperrors.FromStatus(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func clientAuthBody(result rpc.AuthResult[domain.ClientProfile]) fiber.Map {
	return fiber.Map{
		"data": fiber.Map{
			"client": dto.NewClientResponse(result.Profile),
			"auth":   dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
		},
	}
}
