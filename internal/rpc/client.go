package rpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/spec-kit/coworking/internal/domain"
)

// ClientServiceName is the fully qualified gRPC service of the client domain.
const ClientServiceName = "client.Client"

// ClientServer is implemented by the client identity service.
type ClientServer interface {
	Register(ctx context.Context, req *ClientRegisterRequest) (*ClientAuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*ClientAuthResponse, error)
	ValidateToken(ctx context.Context, req *ValidateTokenRequest) (*ClientResponse, error)
	Get(ctx context.Context, req *EntityRequest) (*ClientResponse, error)
	ChangePassword(ctx context.Context, req *ChangePasswordRequest) (*ClientAuthResponse, error)
	Delete(ctx context.Context, req *EntityRequest) (*Empty, error)
}

var clientServiceDesc = grpc.ServiceDesc{
	ServiceName: ClientServiceName,
	HandlerType: (*ClientServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Register",
			Handler:    unary(methodName(ClientServiceName, "Register"), ClientServer.Register),
		},
		{
			MethodName: "Login",
			Handler:    unary(methodName(ClientServiceName, "Login"), ClientServer.Login),
		},
		{
			MethodName: "ValidateToken",
			Handler:    unary(methodName(ClientServiceName, "ValidateToken"), ClientServer.ValidateToken),
		},
		{
			MethodName: "Get",
			Handler:    unary(methodName(ClientServiceName, "Get"), ClientServer.Get),
		},
		{
			MethodName: "ChangePassword",
			Handler:    unary(methodName(ClientServiceName, "ChangePassword"), ClientServer.ChangePassword),
		},
		{
			MethodName: "Delete",
			Handler:    unary(methodName(ClientServiceName, "Delete"), ClientServer.Delete),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "client",
}

// RegisterClientServer attaches srv to a gRPC server.
func RegisterClientServer(s grpc.ServiceRegistrar, srv ClientServer) {
	s.RegisterService(&clientServiceDesc, srv)
}

// ClientClient calls the client identity service.
type ClientClient struct {
	conn    grpc.ClientConnInterface
	timeout time.Duration
}

// NewClientClient wraps conn; timeout behaves as in NewAdminClient.
func NewClientClient(conn grpc.ClientConnInterface, timeout time.Duration) *ClientClient {
	return &ClientClient{conn: conn, timeout: timeout}
}

func (c *ClientClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()
	return c.conn.Invoke(ctx, methodName(ClientServiceName, method), in, out, callOptions(opts)...)
}

// ValidateToken returns the client the token was issued for.
func (c *ClientClient) ValidateToken(ctx context.Context, token string) (domain.ClientProfile, error) {
	out := new(ClientResponse)
	if err := c.invoke(ctx, "ValidateToken", &ValidateTokenRequest{Token: token}, out); err != nil {
		return domain.ClientProfile{}, err
	}
	return clientProfile(out)
}

func (c *ClientClient) Register(ctx context.Context, req *ClientRegisterRequest) (AuthResult[domain.ClientProfile], error) {
	out := new(ClientAuthResponse)
	if err := c.invoke(ctx, "Register", req, out); err != nil {
		return AuthResult[domain.ClientProfile]{}, err
	}
	return clientAuthResult(out)
}

func (c *ClientClient) Login(ctx context.Context, req *LoginRequest) (AuthResult[domain.ClientProfile], error) {
	out := new(ClientAuthResponse)
	if err := c.invoke(ctx, "Login", req, out); err != nil {
		return AuthResult[domain.ClientProfile]{}, err
	}
	return clientAuthResult(out)
}

func (c *ClientClient) Get(ctx context.Context, id string) (domain.ClientProfile, error) {
	out := new(ClientResponse)
	if err := c.invoke(ctx, "Get", &EntityRequest{ID: id}, out); err != nil {
		return domain.ClientProfile{}, err
	}
	return clientProfile(out)
}

func (c *ClientClient) ChangePassword(ctx context.Context, req *ChangePasswordRequest) (AuthResult[domain.ClientProfile], error) {
	out := new(ClientAuthResponse)
	if err := c.invoke(ctx, "ChangePassword", req, out); err != nil {
		return AuthResult[domain.ClientProfile]{}, err
	}
	return clientAuthResult(out)
}

// Delete removes the client with id.
func (c *ClientClient) Delete(ctx context.Context, id string) error {
	return c.invoke(ctx, "Delete", &EntityRequest{ID: id}, new(Empty))
}

func clientProfile(out *ClientResponse) (domain.ClientProfile, error) {
	profile, err := out.Profile()
	if err != nil {
		return domain.ClientProfile{}, status.Errorf(codes.Internal, "client response carries bad id: %v", err)
	}
	return profile, nil
}

func clientAuthResult(out *ClientAuthResponse) (AuthResult[domain.ClientProfile], error) {
	profile, err := clientProfile(&out.Client)
	if err != nil {
		return AuthResult[domain.ClientProfile]{}, err
	}
	return AuthResult[domain.ClientProfile]{
		Token:     out.Token,
		ExpiresAt: time.Unix(out.ExpiresAt, 0).UTC(),
		Profile:   profile,
	}, nil
}
