package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/coworking/internal/auth"
	"github.com/spec-kit/coworking/internal/domain"
	"github.com/spec-kit/coworking/internal/events"
	"github.com/spec-kit/coworking/internal/repository"
	"github.com/spec-kit/coworking/internal/rpc"
)

// ClientService implements the client identity domain.
type ClientService struct {
	accounts
	clients   repository.ClientRepository
	validator *auth.Validator[domain.Client]
}

var _ rpc.ClientServer = (*ClientService)(nil)

// NewClientService wires the client domain. key must carry the client label.
func NewClientService(key auth.DomainKey, clients repository.ClientRepository, deps Dependencies) (*ClientService, error) {
	if key.Label != domain.LabelClient {
		return nil, fmt.Errorf("client service given %s key", key.Label)
	}
	if deps.Hasher == nil {
		return nil, errors.New("client service requires a password hasher")
	}
	acc := newAccounts(key, deps)
	return &ClientService{
		accounts:  acc,
		clients:   clients,
		validator: auth.NewValidator[domain.Client](key, clients.GetByID, acc.now),
	}, nil
}

// Register creates a client account and signs its first token.
func (s *ClientService) Register(ctx context.Context, req *rpc.ClientRegisterRequest) (*rpc.ClientAuthResponse, error) {
	resp, err := s.register(ctx, req)
	return resp, toStatus(err)
}

func (s *ClientService) register(ctx context.Context, req *rpc.ClientRegisterRequest) (*rpc.ClientAuthResponse, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Surname) == "" {
		return nil, fmt.Errorf("%w: name and surname are required", ErrInvalidArgument)
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	hash, err := s.hashNew(req.Password)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate client id: %w", err)
	}

	client := &domain.Client{
		ID:                id,
		Name:              strings.TrimSpace(req.Name),
		Surname:           strings.TrimSpace(req.Surname),
		Patronymic:        strings.TrimSpace(req.Patronymic),
		Email:             email,
		PasswordHash:      hash,
		SendNotifications: req.SendNotifications,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create client: %w", err)
	}
	s.logger.Info("client registered", zap.String("client_id", id.String()))
	s.publish(ctx, events.NewEvent(events.EventAccountRegistered, s.key.Label, id, s.now()))
	return s.authResponse(client)
}

// Login verifies credentials and signs a fresh token.
func (s *ClientService) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.ClientAuthResponse, error) {
	resp, err := s.login(ctx, req)
	return resp, toStatus(err)
}

func (s *ClientService) login(ctx context.Context, req *rpc.LoginRequest) (*rpc.ClientAuthResponse, error) {
	email := normalizeLoginEmail(req.Email)
	if err := s.checkThrottle(ctx, email); err != nil {
		return nil, err
	}

	client, err := s.clients.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.hasher.Burn(req.Password)
		return nil, s.loginFailed(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}
	if !s.hasher.Verify(client.PasswordHash, req.Password) {
		return nil, s.loginFailed(ctx, email)
	}

	s.loginSucceeded(ctx, email)
	return s.authResponse(client)
}

// ValidateToken is the authoritative check for tokens of this domain.
func (s *ClientService) ValidateToken(ctx context.Context, req *rpc.ValidateTokenRequest) (*rpc.ClientResponse, error) {
	client, err := s.validator.Validate(ctx, req.Token)
	if err != nil {
		return nil, toStatus(validationError(err))
	}
	return rpc.NewClientResponse(client.Profile()), nil
}

// Get returns a client by id.
func (s *ClientService) Get(ctx context.Context, req *rpc.EntityRequest) (*rpc.ClientResponse, error) {
	client, err := s.get(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return rpc.NewClientResponse(client.Profile()), nil
}

func (s *ClientService) get(ctx context.Context, rawID string) (*domain.Client, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("client %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}
	return client, nil
}

// ChangePassword replaces the password after checking the current one and
// signs a new token.
func (s *ClientService) ChangePassword(ctx context.Context, req *rpc.ChangePasswordRequest) (*rpc.ClientAuthResponse, error) {
	resp, err := s.changePassword(ctx, req)
	return resp, toStatus(err)
}

func (s *ClientService) changePassword(ctx context.Context, req *rpc.ChangePasswordRequest) (*rpc.ClientAuthResponse, error) {
	client, err := s.get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(client.PasswordHash, req.CurrentPassword) {
		return nil, ErrInvalidCredentials
	}
	hash, err := s.hashNew(req.NewPassword)
	if err != nil {
		return nil, err
	}

	updated, err := s.clients.UpdatePassword(ctx, client.ID, hash, s.now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("client %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update client password: %w", err)
	}
	s.logger.Info("client password changed", zap.String("client_id", client.ID.String()))
	s.publish(ctx, events.NewEvent(events.EventPasswordChanged, s.key.Label, client.ID, s.now()))
	return s.authResponse(updated)
}

// Delete soft-deletes an account. Tokens issued to it stop validating.
func (s *ClientService) Delete(ctx context.Context, req *rpc.EntityRequest) (*rpc.Empty, error) {
	if err := s.delete(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &rpc.Empty{}, nil
}

func (s *ClientService) delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	err = s.clients.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("client %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	s.logger.Info("client deleted", zap.String("client_id", id.String()))
	s.publish(ctx, events.NewEvent(events.EventAccountDeleted, s.key.Label, id, s.now()))
	return nil
}

func (s *ClientService) authResponse(client *domain.Client) (*rpc.ClientAuthResponse, error) {
	token, expiresAt, err := s.issuer.Issue(client.ID)
	if err != nil {
		return nil, err
	}
	return rpc.NewClientAuthResponse(token, expiresAt, client.Profile()), nil
}
