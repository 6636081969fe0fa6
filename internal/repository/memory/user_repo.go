package memory

import (
	"context"
	"sync"

	"resume-hub/internal/domain"
	"resume-hub/pkg/apperror"
)

type userRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string
}

func NewUserRepository() domain.UserRepository {
	return &userRepository{
		byID:    map[string]domain.User{},
		byEmail: map[string]string{},
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	email := domain.NormalizeEmail(user.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[email]; taken {
		return apperror.Conflict("email already registered")
	}
	stored := *user
	stored.Email = email
	r.byID[stored.ID] = stored
	r.byEmail[email] = stored.ID
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	u := r.byID[id]
	return &u, nil
}
