package usecase

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"resume-hub/internal/domain"
	"resume-hub/internal/search"
	"resume-hub/pkg/apperror"
	"resume-hub/pkg/validation"
)

const defaultExportLimit = 10000

type resumeUsecase struct {
	repo        domain.ResumeRepository
	validate    *validator.Validate
	now         func() time.Time
	newID       func() string
	exportLimit int
}

type ResumeOption func(*resumeUsecase)

// WithClock replaces time.Now for created_at and updated_at stamps.
func WithClock(now func() time.Time) ResumeOption {
	return func(u *resumeUsecase) { u.now = now }
}

func WithExportLimit(limit int) ResumeOption {
	return func(u *resumeUsecase) {
		if limit > 0 {
			u.exportLimit = limit
		}
	}
}

func NewResumeUsecase(repo domain.ResumeRepository, validate *validator.Validate, opts ...ResumeOption) domain.ResumeUsecase {
	u := &resumeUsecase{
		repo:        repo,
		validate:    validate,
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
		exportLimit: defaultExportLimit,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// requireRole is the authoritative capability check; route guards only mirror it.
func requireRole(ctx context.Context, role domain.Role) (domain.Principal, error) {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return domain.Principal{}, apperror.Unauthorized("User not authenticated")
	}
	if p.Role != role {
		return domain.Principal{}, apperror.Forbidden("This action requires the " + string(role) + " role")
	}
	return p, nil
}

func (u *resumeUsecase) GetOwn(ctx context.Context) (*domain.Resume, error) {
	p, err := requireRole(ctx, domain.RoleCandidate)
	if err != nil {
		return nil, err
	}
	return u.repo.GetByOwner(ctx, p.UserID)
}

func (u *resumeUsecase) Create(ctx context.Context, input domain.ResumeInput) (string, error) {
	p, err := requireRole(ctx, domain.RoleCandidate)
	if err != nil {
		return "", err
	}

	input.Normalize()
	if err := u.validate.Struct(input); err != nil {
		return "", apperror.Validation(validation.Message(err))
	}

	now := u.now().UTC()
	resume := &domain.Resume{
		ID:         u.newID(),
		OwnerID:    p.UserID,
		Name:       input.Name,
		Email:      input.Email,
		Role:       input.Role,
		Experience: domain.Experience(input.Experience),
		Skills:     domain.SkillSet(nil).Add(input.Skills...),
		Projects:   input.Projects,
		ResumeText: input.ResumeText,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := u.repo.Create(ctx, resume); err != nil {
		return "", err
	}
	return resume.ID, nil
}

func (u *resumeUsecase) Update(ctx context.Context, id string, patch domain.ResumePatch) error {
	p, err := requireRole(ctx, domain.RoleCandidate)
	if err != nil {
		return err
	}
	if !validResumeID(id) {
		return apperror.NotFound("Resume not found")
	}
	if patch.HasBlankSkill() {
		return apperror.Validation("Skills entry: is required")
	}

	_, err = u.repo.Update(ctx, id, func(r *domain.Resume) error {
		if r.OwnerID != p.UserID {
			return apperror.Forbidden("You can only modify your own resume")
		}
		patch.Apply(r)
		if err := u.validate.Struct(r.Input()); err != nil {
			return apperror.Validation(validation.Message(err))
		}
		r.UpdatedAt = u.now().UTC()
		return nil
	})
	return err
}

func (u *resumeUsecase) Delete(ctx context.Context, id string) error {
	p, err := requireRole(ctx, domain.RoleCandidate)
	if err != nil {
		return err
	}
	if !validResumeID(id) {
		return apperror.NotFound("Resume not found")
	}

	return u.repo.Delete(ctx, id, func(r *domain.Resume) error {
		if r.OwnerID != p.UserID {
			return apperror.Forbidden("You can only delete your own resume")
		}
		return nil
	})
}

func (u *resumeUsecase) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error) {
	if _, err := requireRole(ctx, domain.RoleRecruiter); err != nil {
		return nil, err
	}
	if err := search.ValidateFilter(query.Filter); err != nil {
		return nil, err
	}
	if err := search.ValidatePage(query.Page, query.PageSize); err != nil {
		return nil, err
	}

	items, total, err := u.repo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Resume{}
	}

	return &domain.SearchResult{
		Page:     query.Page,
		PageSize: query.PageSize,
		Total:    total,
		Items:    items,
	}, nil
}

// ids are uuids; anything else cannot name a stored resume
func validResumeID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
