package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "user-crud-service/internal/domain/user"
	pkgerrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/security"
)

const msgUserNotFound = "User not found"

// UserRepoPG implements the user Repository on top of GORM.
// It serves PostgreSQL in production and SQLite in tests.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"not null;uniqueIndex"`
	Age       *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func (m *UserSchema) toDomain() *domain.User {
	return &domain.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Age:       m.Age,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// Migrate creates or updates the users table and its unique email index.
func (r *UserRepoPG) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&UserSchema{}); err != nil {
		return pkgerrors.NewInternalError("failed to migrate users table", err)
	}
	return nil
}

// Ping checks the underlying connection.
func (r *UserRepoPG) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// List retrieves users in insertion order, filtered by a case-insensitive
// substring of name or email when query is non-empty.
func (r *UserRepoPG) List(ctx context.Context, query string) ([]domain.User, error) {
	tx := r.db.WithContext(ctx).Order("created_at ASC")
	if query != "" {
		pattern := "%" + security.EscapeLike(strings.ToLower(query)) + "%"
		tx = tx.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	var models []UserSchema
	if err := tx.Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err), zap.String("query", query))
		return nil, pkgerrors.NewInternalError("failed to list users", err)
	}

	users := make([]domain.User, len(models))
	for i := range models {
		users[i] = *models[i].toDomain()
	}
	return users, nil
}

// GetByID retrieves a user by id. Ids that are not UUIDs resolve to not found.
func (r *UserRepoPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, pkgerrors.NewNotFoundError("user", msgUserNotFound)
	}

	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewNotFoundError("user", msgUserNotFound)
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.String("id", id))
		return nil, pkgerrors.NewInternalError("failed to get user", err)
	}
	return model.toDomain(), nil
}

// GetByEmail retrieves a user by email; it returns nil, nil when there is none.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var model UserSchema
	err := r.db.WithContext(ctx).Where("email = ?", domain.NormalizeEmail(email)).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, pkgerrors.NewInternalError("failed to get user by email", err)
	}
	return model.toDomain(), nil
}

// Create validates and inserts a new user.
func (r *UserRepoPG) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	candidate := *u
	candidate.Normalize()
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	model := UserSchema{
		ID:    uuid.NewString(),
		Name:  candidate.Name,
		Email: candidate.Email,
		Age:   candidate.Age,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, pkgerrors.NewAlreadyExistsError("user", "email already exists")
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", model.Email))
		return nil, pkgerrors.NewInternalError("failed to create user", err)
	}

	r.log.Debug("user created in db", zap.String("id", model.ID))
	return model.toDomain(), nil
}

// Update applies the supplied fields inside a transaction and returns the updated row.
func (r *UserRepoPG) Update(ctx context.Context, id string, p domain.UserPatch) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, pkgerrors.NewNotFoundError("user", msgUserNotFound)
	}

	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var model UserSchema
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			return err
		}

		updates := map[string]any{}
		if p.Name != nil {
			updates["name"] = *p.Name
		}
		if p.Email != nil {
			updates["email"] = *p.Email
		}
		if p.Age != nil {
			updates["age"] = *p.Age
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&model).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&model, "id = ?", id).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, pkgerrors.NewNotFoundError("user", msgUserNotFound)
		case isDuplicateKey(err):
			return nil, pkgerrors.NewAlreadyExistsError("user", "email already exists")
		}
		r.log.Error("failed to update user in db", zap.Error(err), zap.String("id", id))
		return nil, pkgerrors.NewInternalError("failed to update user", err)
	}

	r.log.Debug("user updated in db", zap.String("id", id))
	return model.toDomain(), nil
}

// Delete removes a user and returns the removed row.
func (r *UserRepoPG) Delete(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, pkgerrors.NewNotFoundError("user", msgUserNotFound)
	}

	var model UserSchema
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&UserSchema{}, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewNotFoundError("user", msgUserNotFound)
		}
		r.log.Error("failed to delete user in db", zap.Error(err), zap.String("id", id))
		return nil, pkgerrors.NewInternalError("failed to delete user", err)
	}

	r.log.Debug("user deleted in db", zap.String("id", id))
	return model.toDomain(), nil
}

// isDuplicateKey recognises unique violations whether or not the dialect translates them.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
