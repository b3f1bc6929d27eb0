package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/spec-kit/coworking/internal/domain"
	"github.com/spec-kit/coworking/internal/observability"
	apperrors "github.com/spec-kit/coworking/pkg/util"
)

var (
	testAdmin  = domain.AdminProfile{ID: uuid.New(), Email: "ops@example.com"}
	testClient = domain.ClientProfile{ID: uuid.New(), Name: "Ada", Surname: "Lovelace", Email: "ada@example.com"}
)

func labelledToken(t *testing.T, label domain.Label) string {
	t.Helper()
	issued := time.Now().Add(-time.Minute)
	token, err := Encode(Claims{Subject: uuid.NewString(), IssuedAt: issued, ExpiresAt: issued.Add(TokenLifetime)}, label, testSecret)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return token
}

type stubAdmins struct{ err error }

func (s stubAdmins) ValidateToken(context.Context, string) (domain.AdminProfile, error) {
	return testAdmin, s.err
}

type stubClients struct{ err error }

func (s stubClients) ValidateToken(context.Context, string) (domain.ClientProfile, error) {
	return testClient, s.err
}

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"description"`
}

func newTestApp(r *Resolver, level AccessLevel, reached *bool) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": de.Code, "description": de.Message})
		},
	})
	app.Get("/", r.Require(level), func(c *fiber.Ctx) error {
		*reached = true
		identity, ok := IdentityFromContext(c)
		if !ok {
			return errors.New("identity missing")
		}
		return c.SendString(identity.Kind().String())
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, header string) (int, errorBody, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(fiber.HeaderAuthorization, header)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var body errorBody
	if resp.StatusCode != http.StatusOK {
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("decode error body %q: %v", raw, err)
		}
	}
	return resp.StatusCode, body, string(raw)
}

func TestResolver_Require(t *testing.T) {
	adminToken := labelledToken(t, domain.LabelAdmin)
	clientToken := labelledToken(t, domain.LabelClient)
	unavailable := status.Error(codes.Unavailable, "connection refused")
	rejected := status.Error(codes.Unauthenticated, "invalid token")

	cases := []struct {
		name       string
		level      AccessLevel
		header     string
		adminErr   error
		clientErr  error
		wantStatus int
		wantCode   string
		wantBody   string
	}{
		{name: "missing header", level: AccessAny, wantStatus: 401, wantCode: apperrors.CodeMissingAuthorizationHeader},
		{name: "basic auth", level: AccessAny, header: "Basic dXNlcjpwYXNz", wantStatus: 401, wantCode: apperrors.CodeInvalidAuthMethod},
		{name: "bearer without token", level: AccessAny, header: "Bearer", wantStatus: 401, wantCode: apperrors.CodeInvalidAuthMethod},
		{name: "garbage token", level: AccessAny, header: "Bearer garbage", wantStatus: 401, wantCode: apperrors.CodeInvalidCredentials},
		{name: "unknown label", level: AccessAny, header: "Bearer " + labelledToken(t, domain.Label("staff")), wantStatus: 401, wantCode: apperrors.CodeInvalidCredentials},
		{name: "admin on any", level: AccessAny, header: "Bearer " + adminToken, wantStatus: 200, wantBody: "admin"},
		{name: "client on any", level: AccessAny, header: "bearer " + clientToken, wantStatus: 200, wantBody: "client"},
		{name: "admin on admin only", level: AccessAdminOnly, header: "Bearer " + adminToken, wantStatus: 200, wantBody: "admin"},
		{name: "client on client only", level: AccessClientOnly, header: "Bearer " + clientToken, wantStatus: 200, wantBody: "client"},
		{name: "client on admin only", level: AccessAdminOnly, header: "Bearer " + clientToken, wantStatus: 404, wantCode: apperrors.CodeNotFound},
		{name: "admin on client only", level: AccessClientOnly, header: "Bearer " + adminToken, wantStatus: 404, wantCode: apperrors.CodeNotFound},
		{name: "domain rejects", level: AccessAny, header: "Bearer " + adminToken, adminErr: rejected, wantStatus: 401, wantCode: apperrors.CodeInvalidCredentials},
		{name: "domain unavailable", level: AccessAny, header: "Bearer " + clientToken, clientErr: unavailable, wantStatus: 503, wantCode: apperrors.CodeServiceUnavailable},
		{name: "domain timeout", level: AccessAny, header: "Bearer " + clientToken, clientErr: context.DeadlineExceeded, wantStatus: 503, wantCode: apperrors.CodeServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resolver := NewResolver(map[domain.Label]TokenValidator{
				domain.LabelAdmin:  AdminValidator(stubAdmins{err: tc.adminErr}),
				domain.LabelClient: ClientValidator(stubClients{err: tc.clientErr}),
			}, ResolverOptions{})

			var reached bool
			code, body, raw := doRequest(t, newTestApp(resolver, tc.level, &reached), tc.header)
			if code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d (%s)", tc.wantStatus, code, raw)
			}
			if tc.wantStatus == http.StatusOK {
				if raw != tc.wantBody {
					t.Fatalf("expected body %q, got %q", tc.wantBody, raw)
				}
				return
			}
			if reached {
				t.Fatalf("handler ran for a rejected request")
			}
			if body.Error != tc.wantCode {
				t.Fatalf("expected error %q, got %q", tc.wantCode, body.Error)
			}
		})
	}
}

func TestResolver_DenialDoesNotNameAccessLevel(t *testing.T) {
	resolver := NewResolver(map[domain.Label]TokenValidator{
		domain.LabelClient: ClientValidator(stubClients{}),
	}, ResolverOptions{})

	var reached bool
	_, denied, _ := doRequest(t, newTestApp(resolver, AccessAdminOnly, &reached), "Bearer "+labelledToken(t, domain.LabelClient))

	notFound := apperrors.ToDomainError(apperrors.NewNotFound())
	if denied.Error != notFound.Code || denied.Description != notFound.Message {
		t.Fatalf("denial %+v differs from a plain not found", denied)
	}
}

func TestResolver_TimeoutBoundsValidation(t *testing.T) {
	slow := TokenValidatorFunc(func(ctx context.Context, _ string) (Identity, error) {
		<-ctx.Done()
		return Identity{}, ctx.Err()
	})
	resolver := NewResolver(map[domain.Label]TokenValidator{domain.LabelAdmin: slow}, ResolverOptions{Timeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := resolver.Resolve(context.Background(), "Bearer "+labelledToken(t, domain.LabelAdmin))
	if !apperrors.IsCode(err, apperrors.CodeServiceUnavailable) {
		t.Fatalf("expected service unavailable, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("validation was not bounded by the timeout")
	}
}

func TestResolver_IdentityMustMatchLabel(t *testing.T) {
	// A misbehaving admin domain that answers with a client identity.
	confused := TokenValidatorFunc(func(context.Context, string) (Identity, error) {
		return NewClientIdentity(testClient), nil
	})
	resolver := NewResolver(map[domain.Label]TokenValidator{domain.LabelAdmin: confused}, ResolverOptions{})

	_, err := resolver.Resolve(context.Background(), "Bearer "+labelledToken(t, domain.LabelAdmin))
	if !apperrors.IsCode(err, apperrors.CodeInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestResolver_RecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	resolver := NewResolver(map[domain.Label]TokenValidator{
		domain.LabelAdmin: AdminValidator(stubAdmins{}),
	}, ResolverOptions{Metrics: metrics})

	ctx := context.Background()
	_, _ = resolver.Resolve(ctx, "")
	_, _ = resolver.Resolve(ctx, "Bearer "+labelledToken(t, domain.LabelAdmin))

	if got := outcomeCount(t, reg, "none", observability.OutcomeMissingHeader); got != 1 {
		t.Fatalf("expected one missing header outcome, got %v", got)
	}
	if got := outcomeCount(t, reg, "admin", observability.OutcomeResolved); got != 1 {
		t.Fatalf("expected one resolved outcome, got %v", got)
	}
}

func outcomeCount(t *testing.T, reg *prometheus.Registry, domainLabel, outcome string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "coworking_auth_outcomes_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["domain"] == domainLabel && labels["outcome"] == outcome {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestBearerToken(t *testing.T) {
	cases := map[string]struct {
		header string
		token  string
		code   string
	}{
		"canonical":     {header: "Bearer abc", token: "abc"},
		"lower case":    {header: "bearer abc", token: "abc"},
		"padded":        {header: "Bearer   abc ", token: "abc"},
		"empty":         {code: apperrors.CodeMissingAuthorizationHeader},
		"wrong scheme":  {header: "Token abc", code: apperrors.CodeInvalidAuthMethod},
		"no separator":  {header: "Bearerabc", code: apperrors.CodeInvalidAuthMethod},
		"empty payload": {header: "Bearer ", code: apperrors.CodeInvalidAuthMethod},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			token, err := BearerToken(tc.header)
			if tc.code != "" {
				if !apperrors.IsCode(err, tc.code) {
					t.Fatalf("expected %s, got %v", tc.code, err)
				}
				return
			}
			if err != nil || token != tc.token {
				t.Fatalf("expected %q, got %q (%v)", tc.token, token, err)
			}
		})
	}
}
