package usecase

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"resume-hub/internal/domain"
	"resume-hub/pkg/apperror"
	"resume-hub/pkg/validation"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID, role, email string) (string, error)
}

type authUsecase struct {
	userRepo   domain.UserRepository
	tokens     TokenIssuer
	validate   *validator.Validate
	bcryptCost int
	now        func() time.Time
}

func NewAuthUsecase(userRepo domain.UserRepository, tokens TokenIssuer, validate *validator.Validate) domain.AuthUsecase {
	return &authUsecase{
		userRepo:   userRepo,
		tokens:     tokens,
		validate:   validate,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

func (u *authUsecase) Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error) {
	req.Normalize()
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.Validation(validation.Message(err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), u.bcryptCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	now := u.now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         domain.Role(req.Role),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *authUsecase) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := u.validate.Struct(req); err != nil {
		return nil, "", apperror.Validation(validation.Message(err))
	}

	user, err := u.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	// same answer for unknown email and wrong password
	if user == nil || user.PasswordHash == "" {
		return nil, "", apperror.Unauthorized("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", apperror.Unauthorized("Invalid email or password")
	}

	token, err := u.tokens.Issue(user.ID, string(user.Role), user.Email)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	return user, token, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.Unauthorized("User not found")
	}
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Unauthorized("User not found")
	}
	return user, nil
}

// EnsureUserExists only admits subjects that are UUIDs; user ids are stored as
// uuid columns.
func (u *authUsecase) EnsureUserExists(ctx context.Context, user *domain.User) (*domain.User, error) {
	if _, err := uuid.Parse(user.ID); err != nil {
		return nil, apperror.Unauthorized("Token subject is not a valid user id")
	}
	existing, err := u.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if !user.Role.Valid() {
		user.Role = domain.RoleCandidate
	}
	user.Email = domain.NormalizeEmail(user.Email)
	user.CreatedAt = u.now().UTC()
	user.UpdatedAt = user.CreatedAt

	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
