package domain

import (
	"context"
	"strings"
	"time"
)

// Experience is the seniority bucket a candidate declares on their resume.
type Experience string

const (
	ExperienceFresher     Experience = "Fresher"
	ExperienceExperienced Experience = "Experienced"
)

func (e Experience) Valid() bool {
	return e == ExperienceFresher || e == ExperienceExperienced
}

// Resume is the single profile a candidate keeps. ID and OwnerID never change after creation.
type Resume struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"owner_id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	Experience Experience `json:"experience"`
	Skills     SkillSet   `json:"skills"`
	Projects   string     `json:"projects"`
	ResumeText string     `json:"resume_text"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate without touching shared snapshots.
func (r Resume) Clone() Resume {
	r.Skills = r.Skills.Clone()
	return r
}

// Input returns the editable fields of r, for validation after a merge.
func (r Resume) Input() ResumeInput {
	return ResumeInput{
		Name:       r.Name,
		Email:      r.Email,
		Role:       r.Role,
		Experience: string(r.Experience),
		Skills:     []string(r.Skills),
		Projects:   r.Projects,
		ResumeText: r.ResumeText,
	}
}

// ResumeInput is the body of a create call. Text fields are free-form; only
// emptiness and the experience enum are checked.
type ResumeInput struct {
	Name       string   `json:"name" validate:"required"`
	Email      string   `json:"email" validate:"required"`
	Role       string   `json:"role" validate:"required"`
	Experience string   `json:"experience" validate:"required,oneof=Fresher Experienced"`
	Skills     []string `json:"skills" validate:"dive,required"`
	Projects   string   `json:"projects"`
	ResumeText string   `json:"resume_text"`
}

// Normalize trims surrounding whitespace from every text field and skill.
func (in *ResumeInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Role = strings.TrimSpace(in.Role)
	in.Experience = strings.TrimSpace(in.Experience)
	in.Projects = strings.TrimSpace(in.Projects)
	in.ResumeText = strings.TrimSpace(in.ResumeText)
	for i, s := range in.Skills {
		in.Skills[i] = strings.TrimSpace(s)
	}
}

// ResumePatch is the body of an update call. Nil fields keep their stored value.
// Skills replaces the whole list; AddSkills and RemoveSkills are applied after it.
type ResumePatch struct {
	Name         *string   `json:"name,omitempty"`
	Email        *string   `json:"email,omitempty"`
	Role         *string   `json:"role,omitempty"`
	Experience   *string   `json:"experience,omitempty"`
	Skills       *[]string `json:"skills,omitempty"`
	AddSkills    []string  `json:"add_skills,omitempty"`
	RemoveSkills []string  `json:"remove_skills,omitempty"`
	Projects     *string   `json:"projects,omitempty"`
	ResumeText   *string   `json:"resume_text,omitempty"`
}

// Apply merges the patch into r. It does not validate the result.
func (p ResumePatch) Apply(r *Resume) {
	if p.Name != nil {
		r.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		r.Email = strings.TrimSpace(*p.Email)
	}
	if p.Role != nil {
		r.Role = strings.TrimSpace(*p.Role)
	}
	if p.Experience != nil {
		r.Experience = Experience(strings.TrimSpace(*p.Experience))
	}
	if p.Skills != nil {
		r.Skills = SkillSet(nil).Add(*p.Skills...)
	}
	if len(p.AddSkills) > 0 {
		r.Skills = r.Skills.Add(p.AddSkills...)
	}
	if len(p.RemoveSkills) > 0 {
		r.Skills = r.Skills.Remove(p.RemoveSkills...)
	}
	if p.Projects != nil {
		r.Projects = strings.TrimSpace(*p.Projects)
	}
	if p.ResumeText != nil {
		r.ResumeText = strings.TrimSpace(*p.ResumeText)
	}
}

// HasBlankSkill reports whether the patch tries to store an empty skill.
func (p ResumePatch) HasBlankSkill() bool {
	if p.Skills != nil {
		for _, s := range *p.Skills {
			if strings.TrimSpace(s) == "" {
				return true
			}
		}
	}
	for _, s := range p.AddSkills {
		if strings.TrimSpace(s) == "" {
			return true
		}
	}
	return false
}

// SearchFilter holds the recruiter search criteria. Zero-valued fields do not filter.
type SearchFilter struct {
	Query      string     `json:"q,omitempty"`
	Skills     []string   `json:"skills,omitempty"`
	Role       string     `json:"role,omitempty"`
	Experience Experience `json:"experience,omitempty"`
}

// SearchQuery is a filter plus a 1-based page window.
type SearchQuery struct {
	Filter   SearchFilter
	Page     int
	PageSize int
}

type SearchResult struct {
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
	Total    int64    `json:"total"`
	Items    []Resume `json:"items"`
}

// ResumeRepository persists resumes. Implementations enforce one resume per owner
// at commit time and return apperror kinds for NotFound and Conflict.
type ResumeRepository interface {
	// GetByOwner returns nil, nil when the owner has no resume.
	GetByOwner(ctx context.Context, ownerID string) (*Resume, error)
	Create(ctx context.Context, resume *Resume) error
	// Update loads the resume, hands a private copy to mutate and stores the
	// result, all in one atomic step. An error from mutate aborts the write.
	Update(ctx context.Context, id string, mutate func(r *Resume) error) (*Resume, error)
	// Delete loads the resume, lets check veto the removal, then removes the
	// record and its index entries atomically.
	Delete(ctx context.Context, id string, check func(r *Resume) error) error
	// Search returns one page of matches ordered newest first plus the total
	// match count, both read from the same snapshot.
	Search(ctx context.Context, query SearchQuery) ([]Resume, int64, error)
	Ping(ctx context.Context) error
}

type ResumeUsecase interface {
	GetOwn(ctx context.Context) (*Resume, error)
	Create(ctx context.Context, input ResumeInput) (string, error)
	Update(ctx context.Context, id string, patch ResumePatch) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query SearchQuery) (*SearchResult, error)
	Export(ctx context.Context, filter SearchFilter) ([]byte, string, error)
}
