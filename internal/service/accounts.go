package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/coworking/internal/auth"
	"github.com/spec-kit/coworking/internal/events"
)

// Dependencies are the collaborators shared by both identity services.
type Dependencies struct {
	Hasher   *auth.PasswordHasher
	Throttle LoginThrottle
	// Events receives account lifecycle events. Nil discards them.
	Events events.Dispatcher
	Logger *zap.Logger
	// Clock defaults to time.Now.
	Clock auth.Clock
}

// accounts holds the credential handling common to admins and clients.
type accounts struct {
	key      auth.DomainKey
	issuer   *auth.Issuer
	hasher   *auth.PasswordHasher
	throttle LoginThrottle
	events   events.Dispatcher
	logger   *zap.Logger
	now      auth.Clock
}

func newAccounts(key auth.DomainKey, deps Dependencies) accounts {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	throttle := deps.Throttle
	if throttle == nil {
		throttle = NoopThrottle{}
	}
	dispatcher := deps.Events
	if dispatcher == nil {
		dispatcher = events.Discard{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return accounts{
		key:      key,
		issuer:   auth.NewIssuer(key, now),
		hasher:   deps.Hasher,
		throttle: throttle,
		events:   dispatcher,
		logger:   logger.With(zap.String("domain", key.Label.String())),
		now:      now,
	}
}

// checkThrottle fails open: a throttle outage must not lock everyone out.
func (a *accounts) checkThrottle(ctx context.Context, email string) error {
	blocked, err := a.throttle.Blocked(ctx, email)
	if err != nil {
		a.logger.Warn("login throttle unavailable", zap.Error(err))
		return nil
	}
	if blocked {
		event := events.NewEvent(events.EventLoginThrottled, a.key.Label, uuid.Nil, a.now())
		event.Email = email
		a.publish(ctx, event)
		return ErrTooManyAttempts
	}
	return nil
}

func (a *accounts) loginFailed(ctx context.Context, email string) error {
	if err := a.throttle.Fail(ctx, email); err != nil {
		a.logger.Warn("unable to record login failure", zap.Error(err))
	}
	return ErrInvalidCredentials
}

func (a *accounts) loginSucceeded(ctx context.Context, email string) {
	if err := a.throttle.Reset(ctx, email); err != nil {
		a.logger.Warn("unable to reset login failures", zap.Error(err))
	}
}

// publish never fails the calling operation.
func (a *accounts) publish(ctx context.Context, event events.Event) {
	if err := a.events.Publish(ctx, event); err != nil {
		a.logger.Warn("event handler failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func (a *accounts) hashNew(password string) (string, error) {
	if err := checkPassword(password); err != nil {
		return "", err
	}
	hash, err := a.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// maxPasswordLength is bcrypt's input limit.
const maxPasswordLength = 72

func checkPassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > maxPasswordLength {
		return fmt.Errorf("%w: password must be between %d and %d bytes", ErrInvalidArgument, MinPasswordLength, maxPasswordLength)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if err := validate.Var(email, "required,email,max=254"); err != nil {
		return "", fmt.Errorf("%w: malformed email", ErrInvalidArgument)
	}
	return email, nil
}

// normalizeLoginEmail only canonicalises: a malformed e-mail at login is
// just another unknown account.
func normalizeLoginEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed id", ErrInvalidArgument)
	}
	return id, nil
}

func validationError(err error) error {
	if errors.Is(err, auth.ErrInvalidToken) {
		return ErrInvalidToken
	}
	return err
}
