package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/coworking/internal/auth"
	"github.com/spec-kit/coworking/internal/domain"
	"github.com/spec-kit/coworking/internal/events"
	"github.com/spec-kit/coworking/internal/repository"
	"github.com/spec-kit/coworking/internal/rpc"
)

// AdminService implements the admin identity domain.
type AdminService struct {
	accounts
	admins    repository.AdminRepository
	validator *auth.Validator[domain.Admin]
}

var _ rpc.AdminServer = (*AdminService)(nil)

// NewAdminService wires the admin domain. key must carry the admin label.
func NewAdminService(key auth.DomainKey, admins repository.AdminRepository, deps Dependencies) (*AdminService, error) {
	if key.Label != domain.LabelAdmin {
		return nil, fmt.Errorf("admin service given %s key", key.Label)
	}
	if deps.Hasher == nil {
		return nil, errors.New("admin service requires a password hasher")
	}
	acc := newAccounts(key, deps)
	return &AdminService{
		accounts:  acc,
		admins:    admins,
		validator: auth.NewValidator[domain.Admin](key, admins.GetByID, acc.now),
	}, nil
}

// Register creates an admin account and signs its first token.
func (s *AdminService) Register(ctx context.Context, req *rpc.AdminRegisterRequest) (*rpc.AdminAuthResponse, error) {
	resp, err := s.register(ctx, req)
	return resp, toStatus(err)
}

func (s *AdminService) register(ctx context.Context, req *rpc.AdminRegisterRequest) (*rpc.AdminAuthResponse, error) {
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
		return nil, fmt.Errorf("generate admin id: %w", err)
	}

	admin := &domain.Admin{ID: id, Email: email, PasswordHash: hash}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	s.logger.Info("admin registered", zap.String("admin_id", id.String()))
	s.publish(ctx, events.NewEvent(events.EventAccountRegistered, s.key.Label, id, s.now()))
	return s.authResponse(admin)
}

// Login verifies credentials and signs a fresh token.
func (s *AdminService) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.AdminAuthResponse, error) {
	resp, err := s.login(ctx, req)
	return resp, toStatus(err)
}

func (s *AdminService) login(ctx context.Context, req *rpc.LoginRequest) (*rpc.AdminAuthResponse, error) {
	email := normalizeLoginEmail(req.Email)
	if err := s.checkThrottle(ctx, email); err != nil {
		return nil, err
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.hasher.Burn(req.Password)
		return nil, s.loginFailed(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("load admin: %w", err)
	}
	if !s.hasher.Verify(admin.PasswordHash, req.Password) {
		return nil, s.loginFailed(ctx, email)
	}

	s.loginSucceeded(ctx, email)
	return s.authResponse(admin)
}

// ValidateToken is the authoritative check for tokens of this domain.
func (s *AdminService) ValidateToken(ctx context.Context, req *rpc.ValidateTokenRequest) (*rpc.AdminResponse, error) {
	admin, err := s.validator.Validate(ctx, req.Token)
	if err != nil {
		return nil, toStatus(validationError(err))
	}
	return rpc.NewAdminResponse(admin.Profile()), nil
}

// Get returns an admin by id.
func (s *AdminService) Get(ctx context.Context, req *rpc.EntityRequest) (*rpc.AdminResponse, error) {
	admin, err := s.get(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return rpc.NewAdminResponse(admin.Profile()), nil
}

func (s *AdminService) get(ctx context.Context, rawID string) (*domain.Admin, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	admin, err := s.admins.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("admin %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load admin: %w", err)
	}
	return admin, nil
}

// ChangePassword replaces the password after checking the current one and
// signs a new token.
func (s *AdminService) ChangePassword(ctx context.Context, req *rpc.ChangePasswordRequest) (*rpc.AdminAuthResponse, error) {
	resp, err := s.changePassword(ctx, req)
	return resp, toStatus(err)
}

func (s *AdminService) changePassword(ctx context.Context, req *rpc.ChangePasswordRequest) (*rpc.AdminAuthResponse, error) {
	admin, err := s.get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(admin.PasswordHash, req.CurrentPassword) {
		return nil, ErrInvalidCredentials
	}
	hash, err := s.hashNew(req.NewPassword)
	if err != nil {
		return nil, err
	}

	updated, err := s.admins.UpdatePassword(ctx, admin.ID, hash, s.now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("admin %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update admin password: %w", err)
	}
	s.logger.Info("admin password changed", zap.String("admin_id", admin.ID.String()))
	s.publish(ctx, events.NewEvent(events.EventPasswordChanged, s.key.Label, admin.ID, s.now()))
	return s.authResponse(updated)
}

// Delete soft-deletes an account. Tokens issued to it stop validating.
func (s *AdminService) Delete(ctx context.Context, req *rpc.EntityRequest) (*rpc.Empty, error) {
	if err := s.delete(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &rpc.Empty{}, nil
}

func (s *AdminService) delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	err = s.admins.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("admin %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	s.logger.Info("admin deleted", zap.String("admin_id", id.String()))
	s.publish(ctx, events.NewEvent(events.EventAccountDeleted, s.key.Label, id, s.now()))
	return nil
}

func (s *AdminService) authResponse(admin *domain.Admin) (*rpc.AdminAuthResponse, error) {
	token, expiresAt, err := s.issuer.Issue(admin.ID)
	if err != nil {
		return nil, err
	}
	return rpc.NewAdminAuthResponse(token, expiresAt, admin.Profile()), nil
}
