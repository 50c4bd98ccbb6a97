package user

import (
	"context"
	"strings"

	"go.uber.org/zap"

	domain "user-crud-service/internal/domain/user"
	pkgerrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/logger"
	"user-crud-service/pkg/security"
)

// Repository defines the interface for user data access operations.
// Implementations validate every write and enforce email uniqueness.
type Repository interface {
	// List returns users, optionally filtered by a name/email substring.
	List(ctx context.Context, query string) ([]domain.User, error)
	// GetByID returns a NotFoundError when the id is absent or malformed.
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail returns nil, nil when no user has the email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	// Update applies only the supplied fields and returns the updated record.
	Update(ctx context.Context, id string, p domain.UserPatch) (*domain.User, error)
	// Delete removes the user and returns the removed record.
	Delete(ctx context.Context, id string) (*domain.User, error)
}

const (
	msgEmailTaken   = "User with this email already exists"
	msgEmailInUse   = "Email already in use by another user"
	msgUserNotFound = "User not found"
)

// Usecase implements the business logic for user management operations.
type Usecase struct {
	repo Repository
	log  *zap.Logger
}

var _ UserUsecase = (*Usecase)(nil)

// New creates a new instance of Usecase.
func New(r Repository, log *zap.Logger) *Usecase {
	return &Usecase{repo: r, log: log}
}

// ListUsers returns every user, or those matching the search query.
func (uc *Usecase) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	query, err := security.ValidateSearchQuery(in.Query)
	if err != nil {
		log.Warn("invalid search query", zap.String("query", in.Query), zap.Error(err))
		return nil, pkgerrors.NewValidationError("q", err.Error())
	}

	users, err := uc.repo.List(ctx, query)
	if err != nil {
		log.Error("failed to list users", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}

	return &ListUsersResponse{Users: users, Count: len(users)}, nil
}

// GetUser retrieves a user by id.
func (uc *Usecase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, pkgerrors.NewNotFoundError("user", msgUserNotFound)
	}

	u, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		if !pkgerrors.IsNotFound(err) {
			logger.WithContext(ctx, uc.log).Error("failed to get user", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return u, nil
}

// CreateUser validates the input, rejects an email that is already taken and inserts the user.
// The email pre-check is best-effort; the store's unique index settles races.
func (uc *Usecase) CreateUser(ctx context.Context, in CreateUserRequest) (*domain.User, error) {
	log := logger.WithContext(ctx, uc.log)

	u := &domain.User{Name: in.Name, Email: in.Email, Age: in.Age}
	u.Normalize()

	log.Info("creating user", zap.String("email", u.Email))

	if err := u.Validate(); err != nil {
		log.Warn("create user validation failed", zap.Strings("fields", invalidFields(err)), zap.Error(err))
		return nil, err
	}

	existing, err := uc.repo.GetByEmail(ctx, u.Email)
	if err != nil {
		log.Error("failed to check existing email", zap.String("email", u.Email), zap.Error(err))
		return nil, err
	}
	if existing != nil {
		log.Warn("email already exists", zap.String("email", u.Email))
		return nil, pkgerrors.NewAlreadyExistsError("user", msgEmailTaken)
	}

	created, err := uc.repo.Create(ctx, u)
	if err != nil {
		if pkgerrors.IsClientError(err) {
			log.Warn("create user rejected by store", zap.Error(err))
		} else {
			log.Error("failed to create user", zap.Error(err))
		}
		return nil, err
	}

	log.Info("user created", zap.String("id", created.ID))
	return created, nil
}

// UpdateUser applies only the supplied fields. A supplied email must not belong to another user.
func (uc *Usecase) UpdateUser(ctx context.Context, in UpdateUserRequest) (*domain.User, error) {
	log := logger.WithContext(ctx, uc.log)

	if in.ID == "" {
		return nil, pkgerrors.NewNotFoundError("user", msgUserNotFound)
	}

	patch := in.Patch()
	patch.Normalize()

	log.Info("updating user", zap.String("id", in.ID), zap.Bool("name", patch.Name != nil),
		zap.Bool("email", patch.Email != nil), zap.Bool("age", patch.Age != nil))

	if err := patch.Validate(); err != nil {
		log.Warn("update user validation failed", zap.String("id", in.ID),
			zap.Strings("fields", invalidFields(err)), zap.Error(err))
		return nil, err
	}

	if patch.Email != nil {
		existing, err := uc.repo.GetByEmail(ctx, *patch.Email)
		if err != nil {
			log.Error("failed to check existing email", zap.String("email", *patch.Email), zap.Error(err))
			return nil, err
		}
		// Ids are hex in both stores and may arrive in either case.
		if existing != nil && !strings.EqualFold(existing.ID, in.ID) {
			log.Warn("email already in use", zap.String("email", *patch.Email), zap.String("existing_id", existing.ID))
			return nil, pkgerrors.NewAlreadyExistsError("user", msgEmailInUse)
		}
	}

	updated, err := uc.repo.Update(ctx, in.ID, patch)
	if err != nil {
		if !pkgerrors.IsNotFound(err) && !pkgerrors.IsClientError(err) {
			log.Error("failed to update user", zap.String("id", in.ID), zap.Error(err))
		}
		return nil, err
	}

	return updated, nil
}

// DeleteUser removes a user by id and returns the removed record.
func (uc *Usecase) DeleteUser(ctx context.Context, id string) (*domain.User, error) {
	log := logger.WithContext(ctx, uc.log)

	if id == "" {
		return nil, pkgerrors.NewNotFoundError("user", msgUserNotFound)
	}

	log.Info("deleting user", zap.String("id", id))

	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		if !pkgerrors.IsNotFound(err) {
			log.Error("failed to delete user", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return deleted, nil
}

func invalidFields(err error) []string {
	var verr *pkgerrors.ValidationError
	if pkgerrors.As(err, &verr) {
		return verr.Fields()
	}
	return nil
}
