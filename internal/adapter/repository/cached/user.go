package cached

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-crud-service/internal/adapter/cache"
	domain "user-crud-service/internal/domain/user"
	"user-crud-service/internal/usecase/user"
)

// CachedUserRepository implements user.Repository with caching support.
// It wraps a persistent repository and a cache; cache failures never fail a request.
type CachedUserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

var _ user.Repository = (*CachedUserRepository)(nil)

// NewCachedUserRepository creates a new instance of CachedUserRepository.
func NewCachedUserRepository(dbRepo user.Repository, cache cache.UserCache, log *zap.Logger) *CachedUserRepository {
	return &CachedUserRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
	}
}

// Create delegates to the underlying repository.
func (r *CachedUserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.dbRepo.Create(ctx, u)
}

// GetByID retrieves a user using the cache-aside pattern.
func (r *CachedUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if r.cache != nil {
		cachedUser, err := r.cache.Get(ctx, id)
		if err != nil {
			r.log.Warn("cache get error, falling back to database", zap.String("id", id), zap.Error(err))
		} else if cachedUser != nil {
			return cachedUser, nil
		}
	}

	// Concurrent misses for one id share a single store read.
	result, err, _ := r.group.Do(cache.Key(id), func() (any, error) {
		if r.cache != nil {
			cachedUser, err := r.cache.Get(ctx, id)
			if err == nil && cachedUser != nil {
				return cachedUser, nil
			}
		}

		u, err := r.dbRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if r.cache != nil {
			if _, err := r.cache.Fill(ctx, u); err != nil {
				r.log.Warn("failed to cache user", zap.String("id", id), zap.Error(err))
			}
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	u := *result.(*domain.User)
	return &u, nil
}

// GetByEmail delegates to the underlying repository.
func (r *CachedUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.dbRepo.GetByEmail(ctx, email)
}

// List delegates to the underlying repository.
func (r *CachedUserRepository) List(ctx context.Context, query string) ([]domain.User, error) {
	return r.dbRepo.List(ctx, query)
}

// Update writes through to the cache, dropping the entry if the write fails.
func (r *CachedUserRepository) Update(ctx context.Context, id string, p domain.UserPatch) (*domain.User, error) {
	updated, err := r.dbRepo.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, updated); err != nil {
			r.log.Warn("failed to refresh cache after update", zap.String("id", id), zap.Error(err))
			r.invalidate(ctx, id)
		}
	}
	return updated, nil
}

// Delete removes the user and tombstones its cache entry.
func (r *CachedUserRepository) Delete(ctx context.Context, id string) (*domain.User, error) {
	deleted, err := r.dbRepo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.MarkDeleted(ctx, id); err != nil {
			r.log.Warn("failed to invalidate cache", zap.String("id", id), zap.Error(err))
		}
	}
	return deleted, nil
}

func (r *CachedUserRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("failed to invalidate cache", zap.String("id", id), zap.Error(err))
	}
}
