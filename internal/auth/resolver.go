package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/spec-kit/coworking/internal/domain"
	"github.com/spec-kit/coworking/internal/observability"
	apperrors "github.com/spec-kit/coworking/pkg/util"
)

const identityKey = "auth_identity"

// DefaultValidateTimeout bounds a validation call when no timeout is set.
const DefaultValidateTimeout = 3 * time.Second

// TokenValidator verifies a token inside the domain that owns it.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (Identity, error)
}

// TokenValidatorFunc adapts a function to TokenValidator.
type TokenValidatorFunc func(ctx context.Context, token string) (Identity, error)

func (f TokenValidatorFunc) ValidateToken(ctx context.Context, token string) (Identity, error) {
	return f(ctx, token)
}

// ProfileValidator is the shape of a domain's ValidateToken client.
type ProfileValidator[P any] interface {
	ValidateToken(ctx context.Context, token string) (P, error)
}

// AdminValidator tags profiles returned by the admin domain.
func AdminValidator(v ProfileValidator[domain.AdminProfile]) TokenValidator {
	return TokenValidatorFunc(func(ctx context.Context, token string) (Identity, error) {
		profile, err := v.ValidateToken(ctx, token)
		if err != nil {
			return Identity{}, err
		}
		return NewAdminIdentity(profile), nil
	})
}

// ClientValidator tags profiles returned by the client domain.
func ClientValidator(v ProfileValidator[domain.ClientProfile]) TokenValidator {
	return TokenValidatorFunc(func(ctx context.Context, token string) (Identity, error) {
		profile, err := v.ValidateToken(ctx, token)
		if err != nil {
			return Identity{}, err
		}
		return NewClientIdentity(profile), nil
	})
}

// ResolverOptions tunes a Resolver.
type ResolverOptions struct {
	Timeout time.Duration
	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// Resolver is the gateway middleware that turns a bearer token into an
// Identity. It never verifies signatures itself: the token is handed to the
// domain named in its header, and that domain's answer is final.
type Resolver struct {
	validators map[domain.Label]TokenValidator
	timeout    time.Duration
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewResolver builds a resolver dispatching to validators by domain label.
func NewResolver(validators map[domain.Label]TokenValidator, opts ResolverOptions) *Resolver {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultValidateTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		validators: validators,
		timeout:    timeout,
		logger:     logger,
		metrics:    opts.Metrics,
	}
}

// Require returns middleware that resolves the caller and enforces level.
func (r *Resolver) Require(level AccessLevel) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := r.Resolve(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
		c.Locals(identityKey, identity)

		if !level.Permits(identity.Kind()) {
			r.metrics.RecordAuthOutcome(identity.Kind().String(), observability.OutcomeAccessDenied)
			r.logger.Debug("access level mismatch",
				zap.String("required", level.String()),
				zap.String("domain", identity.Kind().String()),
				zap.String("path", c.Path()),
			)
			return apperrors.NewNotFound()
		}
		return c.Next()
	}
}

// Any accepts callers from either domain.
func (r *Resolver) Any() fiber.Handler { return r.Require(AccessAny) }

// ClientOnly accepts client callers only.
func (r *Resolver) ClientOnly() fiber.Handler { return r.Require(AccessClientOnly) }

// AdminOnly accepts admin callers only.
func (r *Resolver) AdminOnly() fiber.Handler { return r.Require(AccessAdminOnly) }

// Resolve extracts the bearer token from an Authorization header value and
// asks the owning domain to validate it.
func (r *Resolver) Resolve(ctx context.Context, header string) (Identity, error) {
	token, err := BearerToken(header)
	if err != nil {
		outcome := observability.OutcomeInvalidMethod
		if apperrors.IsCode(err, apperrors.CodeMissingAuthorizationHeader) {
			outcome = observability.OutcomeMissingHeader
		}
		r.metrics.RecordAuthOutcome("", outcome)
		return Identity{}, err
	}

	label, err := PeekLabel(token)
	if err != nil {
		r.metrics.RecordAuthOutcome("", observability.OutcomeUnknownLabel)
		r.logger.Debug("token label unreadable", zap.Error(err))
		return Identity{}, apperrors.NewInvalidCredentials()
	}
	validator, ok := r.validators[label]
	if !ok {
		r.metrics.RecordAuthOutcome(label.String(), observability.OutcomeUnknownLabel)
		return Identity{}, apperrors.NewInvalidCredentials()
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	identity, err := validator.ValidateToken(callCtx, token)
	r.metrics.ObserveValidation(label.String(), time.Since(start))

	if err != nil {
		if isTransportFailure(err) {
			r.metrics.RecordAuthOutcome(label.String(), observability.OutcomeUnavailable)
			r.logger.Warn("token validation unavailable",
				zap.String("domain", label.String()),
				zap.String("code", status.Code(err).String()),
			)
			return Identity{}, apperrors.NewServiceUnavailable()
		}
		r.metrics.RecordAuthOutcome(label.String(), observability.OutcomeRejected)
		r.logger.Debug("token rejected",
			zap.String("domain", label.String()),
			zap.String("code", status.Code(err).String()),
		)
		return Identity{}, apperrors.NewInvalidCredentials()
	}
	if ctx.Err() != nil {
		r.metrics.RecordAuthOutcome(label.String(), observability.OutcomeUnavailable)
		return Identity{}, apperrors.NewServiceUnavailable()
	}
	if identity.Kind() != label {
		r.metrics.RecordAuthOutcome(label.String(), observability.OutcomeRejected)
		r.logger.Error("validator returned identity of another domain",
			zap.String("domain", label.String()),
			zap.String("kind", identity.Kind().String()),
		)
		return Identity{}, apperrors.NewInvalidCredentials()
	}

	r.metrics.RecordAuthOutcome(label.String(), observability.OutcomeResolved)
	return identity, nil
}

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", apperrors.NewNoAuthorizationHeader()
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperrors.NewInvalidAuthMethod()
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", apperrors.NewInvalidAuthMethod()
	}
	return token, nil
}

// IdentityFromContext retrieves the identity attached by the resolver.
func IdentityFromContext(c *fiber.Ctx) (Identity, bool) {
	identity, ok := c.Locals(identityKey).(Identity)
	return identity, ok
}

func isTransportFailure(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return true
	default:
		return false
	}
}
