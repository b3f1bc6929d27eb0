package handlers

import (
	"context"

	"github.com/spec-kit/coworking/internal/domain"
	"github.com/spec-kit/coworking/internal/rpc"
)

// AdminGateway is the subset of the admin domain client used by handlers.
type AdminGateway interface {
	Register(ctx context.Context, req *rpc.AdminRegisterRequest) (rpc.AuthResult[domain.AdminProfile], error)
	Login(ctx context.Context, req *rpc.LoginRequest) (rpc.AuthResult[domain.AdminProfile], error)
	Get(ctx context.Context, id string) (domain.AdminProfile, error)
	ChangePassword(ctx context.Context, req *rpc.ChangePasswordRequest) (rpc.AuthResult[domain.AdminProfile], error)
	Delete(ctx context.Context, id string) error
}

// ClientGateway is the subset of the client domain client used by handlers.
type ClientGateway interface {
	Register(ctx context.Context, req *rpc.ClientRegisterRequest) (rpc.AuthResult[domain.ClientProfile], error)
	Login(ctx context.Context, req *rpc.LoginRequest) (rpc.AuthResult[domain.ClientProfile], error)
	Get(ctx context.Context, id string) (domain.ClientProfile, error)
	ChangePassword(ctx context.Context, req *rpc.ChangePasswordRequest) (rpc.AuthResult[domain.ClientProfile], error)
	Delete(ctx context.Context, id string) error
}

var (
	_ AdminGateway  = (*rpc.AdminClient)(nil)
	_ ClientGateway = (*rpc.ClientClient)(nil)
)
