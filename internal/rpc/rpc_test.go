package rpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/spec-kit/coworking/internal/domain"
)

type fakeAdminServer struct {
	admin domain.AdminProfile
	token string
}

func (f *fakeAdminServer) Register(_ context.Context, req *AdminRegisterRequest) (*AdminAuthResponse, error) {
	if req.Email == f.admin.Email {
		return nil, status.Error(codes.AlreadyExists, "email already registered")
	}
	return NewAdminAuthResponse(f.token, time.Unix(1700000000, 0), domain.AdminProfile{ID: uuid.New(), Email: req.Email}), nil
}

func (f *fakeAdminServer) Login(_ context.Context, req *LoginRequest) (*AdminAuthResponse, error) {
	if req.Email != f.admin.Email || req.Password != "secret-password" {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}
	return NewAdminAuthResponse(f.token, time.Unix(1700000000, 0), f.admin), nil
}

func (f *fakeAdminServer) ValidateToken(_ context.Context, req *ValidateTokenRequest) (*AdminResponse, error) {
	if req.Token != f.token {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}
	return NewAdminResponse(f.admin), nil
}

func (f *fakeAdminServer) Get(_ context.Context, req *EntityRequest) (*AdminResponse, error) {
	if req.ID != f.admin.ID.String() {
		return nil, status.Error(codes.NotFound, "admin not found")
	}
	return NewAdminResponse(f.admin), nil
}

func (f *fakeAdminServer) ChangePassword(_ context.Context, _ *ChangePasswordRequest) (*AdminAuthResponse, error) {
	panic("boom")
}

func (f *fakeAdminServer) Delete(_ context.Context, req *EntityRequest) (*Empty, error) {
	if req.ID != f.admin.ID.String() {
		return nil, status.Error(codes.NotFound, "admin not found")
	}
	return &Empty{}, nil
}

type fakeClientServer struct {
	client domain.ClientProfile
}

func (f *fakeClientServer) Register(_ context.Context, req *ClientRegisterRequest) (*ClientAuthResponse, error) {
	profile := domain.ClientProfile{
		ID:                f.client.ID,
		Name:              req.Name,
		Surname:           req.Surname,
		Patronymic:        req.Patronymic,
		Email:             req.Email,
		SendNotifications: req.SendNotifications,
	}
	return NewClientAuthResponse("client-token", time.Unix(1700000000, 0), profile), nil
}

func (f *fakeClientServer) Login(context.Context, *LoginRequest) (*ClientAuthResponse, error) {
	return nil, status.Error(codes.ResourceExhausted, "too many login attempts")
}

func (f *fakeClientServer) ValidateToken(context.Context, *ValidateTokenRequest) (*ClientResponse, error) {
	return NewClientResponse(f.client), nil
}

func (f *fakeClientServer) Get(context.Context, *EntityRequest) (*ClientResponse, error) {
	return NewClientResponse(f.client), nil
}

func (f *fakeClientServer) ChangePassword(context.Context, *ChangePasswordRequest) (*ClientAuthResponse, error) {
	return nil, status.Error(codes.Unauthenticated, "invalid credentials")
}

func (f *fakeClientServer) Delete(context.Context, *EntityRequest) (*Empty, error) {
	return &Empty{}, nil
}

func startServer(t *testing.T, register func(*grpc.Server)) (*Server, *grpc.ClientConn) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewServer(zap.NewNop(), nil)
	register(srv.GRPC)
	go func() { _ = srv.GRPC.Serve(lis) }()

	conn, err := Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
		srv.GRPC.Stop()
	})
	return srv, conn
}

func TestAdminClient_RoundTrip(t *testing.T) {
	fake := &fakeAdminServer{
		admin: domain.AdminProfile{ID: uuid.New(), Email: "ops@example.com"},
		token: "admin-token",
	}
	_, conn := startServer(t, func(s *grpc.Server) { RegisterAdminServer(s, fake) })
	client := NewAdminClient(conn, time.Second)
	ctx := context.Background()

	profile, err := client.ValidateToken(ctx, "admin-token")
	if err != nil {
		t.Fatalf("ValidateToken returned error: %v", err)
	}
	if profile != fake.admin {
		t.Fatalf("unexpected profile %+v", profile)
	}

	result, err := client.Login(ctx, &LoginRequest{Email: "ops@example.com", Password: "secret-password"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.Token != "admin-token" || result.Profile != fake.admin {
		t.Fatalf("unexpected login result %+v", result)
	}
	if !result.ExpiresAt.Equal(time.Unix(1700000000, 0)) {
		t.Fatalf("unexpected expiry %s", result.ExpiresAt)
	}

	if err := client.Delete(ctx, fake.admin.ID.String()); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
}

func TestAdminClient_PropagatesStatusCodes(t *testing.T) {
	fake := &fakeAdminServer{
		admin: domain.AdminProfile{ID: uuid.New(), Email: "ops@example.com"},
		token: "admin-token",
	}
	_, conn := startServer(t, func(s *grpc.Server) { RegisterAdminServer(s, fake) })
	client := NewAdminClient(conn, time.Second)
	ctx := context.Background()

	cases := []struct {
		name string
		call func() error
		want codes.Code
	}{
		{
			name: "bad token",
			call: func() error { _, err := client.ValidateToken(ctx, "other"); return err },
			want: codes.Unauthenticated,
		},
		{
			name: "duplicate email",
			call: func() error {
				_, err := client.Register(ctx, &AdminRegisterRequest{Email: "ops@example.com", Password: "secret-password"})
				return err
			},
			want: codes.AlreadyExists,
		},
		{
			name: "unknown id",
			call: func() error { _, err := client.Get(ctx, uuid.NewString()); return err },
			want: codes.NotFound,
		},
		{
			name: "delete unknown id",
			call: func() error { return client.Delete(ctx, uuid.NewString()) },
			want: codes.NotFound,
		},
		{
			name: "handler panic",
			call: func() error { _, err := client.ChangePassword(ctx, &ChangePasswordRequest{}); return err },
			want: codes.Internal,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := status.Code(tc.call()); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestClientClient_RoundTrip(t *testing.T) {
	fake := &fakeClientServer{client: domain.ClientProfile{
		ID:                uuid.New(),
		Name:              "Ada",
		Surname:           "Lovelace",
		Email:             "ada@example.com",
		SendNotifications: true,
		Verified:          true,
	}}
	_, conn := startServer(t, func(s *grpc.Server) { RegisterClientServer(s, fake) })
	client := NewClientClient(conn, time.Second)
	ctx := context.Background()

	profile, err := client.ValidateToken(ctx, "anything")
	if err != nil {
		t.Fatalf("ValidateToken returned error: %v", err)
	}
	if profile != fake.client {
		t.Fatalf("unexpected profile %+v", profile)
	}

	result, err := client.Register(ctx, &ClientRegisterRequest{
		Name:       "Grace",
		Surname:    "Hopper",
		Patronymic: "Brewster",
		Email:      "grace@example.com",
		Password:   "secret-password",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if result.Profile.Patronymic != "Brewster" || result.Profile.Email != "grace@example.com" {
		t.Fatalf("unexpected registration result %+v", result.Profile)
	}

	_, err = client.Login(ctx, &LoginRequest{Email: "ada@example.com"})
	if status.Code(err) != codes.ResourceExhausted {
		t.Fatalf("expected ResourceExhausted, got %v", err)
	}
}

func TestCheckHealth(t *testing.T) {
	srv, conn := startServer(t, func(s *grpc.Server) {})
	ctx := context.Background()

	if err := CheckHealth(ctx, conn); err == nil {
		t.Fatalf("expected NOT_SERVING before SetServing")
	}
	srv.SetServing(true)
	if err := CheckHealth(ctx, conn); err != nil {
		t.Fatalf("expected SERVING, got %v", err)
	}
}

func TestCodec_IgnoresUnknownFields(t *testing.T) {
	var codec Codec
	data, err := codec.Marshal(map[string]any{"token": "abc", "extra": 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var req ValidateTokenRequest
	if err := codec.Unmarshal(data, &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Token != "abc" {
		t.Fatalf("unexpected token %q", req.Token)
	}
}
