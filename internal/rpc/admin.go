package rpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/spec-kit/coworking/internal/domain"
)

// AdminServiceName is the fully qualified gRPC service of the admin domain.
const AdminServiceName = "admin.Admin"

// AdminServer is implemented by the admin identity service.
type AdminServer interface {
	Register(ctx context.Context, req *AdminRegisterRequest) (*AdminAuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AdminAuthResponse, error)
	ValidateToken(ctx context.Context, req *ValidateTokenRequest) (*AdminResponse, error)
	Get(ctx context.Context, req *EntityRequest) (*AdminResponse, error)
	ChangePassword(ctx context.Context, req *ChangePasswordRequest) (*AdminAuthResponse, error)
	Delete(ctx context.Context, req *EntityRequest) (*Empty, error)
}

var adminServiceDesc = grpc.ServiceDesc{
	ServiceName: AdminServiceName,
	HandlerType: (*AdminServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Register",
			Handler:    unary(methodName(AdminServiceName, "Register"), AdminServer.Register),
		},
		{
			MethodName: "Login",
			Handler:    unary(methodName(AdminServiceName, "Login"), AdminServer.Login),
		},
		{
			MethodName: "ValidateToken",
			Handler:    unary(methodName(AdminServiceName, "ValidateToken"), AdminServer.ValidateToken),
		},
		{
			MethodName: "Get",
			Handler:    unary(methodName(AdminServiceName, "Get"), AdminServer.Get),
		},
		{
			MethodName: "ChangePassword",
			Handler:    unary(methodName(AdminServiceName, "ChangePassword"), AdminServer.ChangePassword),
		},
		{
			MethodName: "Delete",
			Handler:    unary(methodName(AdminServiceName, "Delete"), AdminServer.Delete),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "admin",
}

// RegisterAdminServer attaches srv to a gRPC server.
func RegisterAdminServer(s grpc.ServiceRegistrar, srv AdminServer) {
	s.RegisterService(&adminServiceDesc, srv)
}

// AdminClient calls the admin identity service.
type AdminClient struct {
	conn    grpc.ClientConnInterface
	timeout time.Duration
}

// NewAdminClient wraps conn. A positive timeout bounds every call that does
// not already carry an earlier deadline.
func NewAdminClient(conn grpc.ClientConnInterface, timeout time.Duration) *AdminClient {
	return &AdminClient{conn: conn, timeout: timeout}
}

func (c *AdminClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()
	return c.conn.Invoke(ctx, methodName(AdminServiceName, method), in, out, callOptions(opts)...)
}

// ValidateToken returns the admin the token was issued for.
func (c *AdminClient) ValidateToken(ctx context.Context, token string) (domain.AdminProfile, error) {
	out := new(AdminResponse)
	if err := c.invoke(ctx, "ValidateToken", &ValidateTokenRequest{Token: token}, out); err != nil {
		return domain.AdminProfile{}, err
	}
	return adminProfile(out)
}

func (c *AdminClient) Register(ctx context.Context, req *AdminRegisterRequest) (AuthResult[domain.AdminProfile], error) {
	out := new(AdminAuthResponse)
	if err := c.invoke(ctx, "Register", req, out); err != nil {
		return AuthResult[domain.AdminProfile]{}, err
	}
	return adminAuthResult(out)
}

func (c *AdminClient) Login(ctx context.Context, req *LoginRequest) (AuthResult[domain.AdminProfile], error) {
	out := new(AdminAuthResponse)
	if err := c.invoke(ctx, "Login", req, out); err != nil {
		return AuthResult[domain.AdminProfile]{}, err
	}
	return adminAuthResult(out)
}

func (c *AdminClient) Get(ctx context.Context, id string) (domain.AdminProfile, error) {
	out := new(AdminResponse)
	if err := c.invoke(ctx, "Get", &EntityRequest{ID: id}, out); err != nil {
		return domain.AdminProfile{}, err
	}
	return adminProfile(out)
}

func (c *AdminClient) ChangePassword(ctx context.Context, req *ChangePasswordRequest) (AuthResult[domain.AdminProfile], error) {
	out := new(AdminAuthResponse)
	if err := c.invoke(ctx, "ChangePassword", req, out); err != nil {
		return AuthResult[domain.AdminProfile]{}, err
	}
	return adminAuthResult(out)
}

// Delete removes the admin with id.
func (c *AdminClient) Delete(ctx context.Context, id string) error {
	return c.invoke(ctx, "Delete", &EntityRequest{ID: id}, new(Empty))
}

func adminProfile(out *AdminResponse) (domain.AdminProfile, error) {
	profile, err := out.Profile()
	if err != nil {
		return domain.AdminProfile{}, status.Errorf(codes.Internal, "admin response carries bad id: %v", err)
	}
	return profile, nil
}

func adminAuthResult(out *AdminAuthResponse) (AuthResult[domain.AdminProfile], error) {
	profile, err := adminProfile(&out.Admin)
	if err != nil {
		return AuthResult[domain.AdminProfile]{}, err
	}
	return AuthResult[domain.AdminProfile]{
		Token:     out.Token,
		ExpiresAt: time.Unix(out.ExpiresAt, 0).UTC(),
		Profile:   profile,
	}, nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
