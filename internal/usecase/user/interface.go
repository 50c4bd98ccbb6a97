package user

import (
	"context"

	domain "user-crud-service/internal/domain/user"
)

// UserUsecase defines the user business operations consumed by the transport layer.
type UserUsecase interface {
	ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, in CreateUserRequest) (*domain.User, error)
	UpdateUser(ctx context.Context, in UpdateUserRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) (*domain.User, error)
}
