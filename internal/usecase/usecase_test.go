package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"resume-hub/internal/domain"
)

// Mock Repositories
type MockResumeRepo struct {
	mock.Mock
}

func (m *MockResumeRepo) GetByOwner(ctx context.Context, ownerID string) (*domain.Resume, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resume), args.Error(1)
}

func (m *MockResumeRepo) Create(ctx context.Context, resume *domain.Resume) error {
	return m.Called(ctx, resume).Error(0)
}

func (m *MockResumeRepo) Update(ctx context.Context, id string, mutate func(*domain.Resume) error) (*domain.Resume, error) {
	args := m.Called(ctx, id, mutate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resume), args.Error(1)
}

func (m *MockResumeRepo) Delete(ctx context.Context, id string, check func(*domain.Resume) error) error {
	return m.Called(ctx, id, check).Error(0)
}

func (m *MockResumeRepo) Search(ctx context.Context, query domain.SearchQuery) ([]domain.Resume, int64, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, int64(args.Int(1)), args.Error(2)
	}
	return args.Get(0).([]domain.Resume), int64(args.Int(1)), args.Error(2)
}

func (m *MockResumeRepo) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(userID, role, email string) (string, error) {
	args := m.Called(userID, role, email)
	return args.String(0), args.Error(1)
}

func candidateCtx(id string) context.Context {
	return domain.WithPrincipal(context.Background(), domain.Principal{UserID: id, Role: domain.RoleCandidate})
}

func recruiterCtx(id string) context.Context {
	return domain.WithPrincipal(context.Background(), domain.Principal{UserID: id, Role: domain.RoleRecruiter})
}

func strPtr(s string) *string { return &s }
