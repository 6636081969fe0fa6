// Package search holds the store-independent parts of recruiter search:
// filter parsing, matching, result ordering and page windows.
package search

import (
	"math"
	"sort"
	"strings"

	"resume-hub/internal/domain"
	"resume-hub/pkg/apperror"
)

// ParseSkills splits a comma-separated skills parameter, trimming terms and
// dropping empty ones.
func ParseSkills(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if term := strings.TrimSpace(part); term != "" {
			out = append(out, term)
		}
	}
	return out
}

// NewFilter builds a filter from raw query parameters.
func NewFilter(q, skills, role, experience string) (domain.SearchFilter, error) {
	f := domain.SearchFilter{
		Query:  strings.TrimSpace(q),
		Skills: ParseSkills(skills),
		Role:   strings.TrimSpace(role),
	}
	if exp := strings.TrimSpace(experience); exp != "" {
		f.Experience = domain.Experience(exp)
	}
	if err := ValidateFilter(f); err != nil {
		return domain.SearchFilter{}, err
	}
	return f, nil
}

func ValidateFilter(f domain.SearchFilter) error {
	if f.Experience != "" && !f.Experience.Valid() {
		return apperror.Validation("experience must be one of: Fresher, Experienced")
	}
	return nil
}

func ValidatePage(page, pageSize int) error {
	if page < 1 {
		return apperror.Validation("page must be >= 1")
	}
	if pageSize < 1 {
		return apperror.Validation("page_size must be >= 1")
	}
	return nil
}

// Matcher is a filter with its terms lower-cased once, ready to test many resumes.
type Matcher struct {
	query      string
	skills     []string
	role       string
	experience domain.Experience
}

func Compile(f domain.SearchFilter) Matcher {
	m := Matcher{
		query:      strings.ToLower(f.Query),
		role:       strings.ToLower(f.Role),
		experience: f.Experience,
	}
	for _, s := range f.Skills {
		m.skills = append(m.skills, strings.ToLower(s))
	}
	return m
}

// SkillTerms returns the lower-cased skill terms, or nil when skills do not filter.
func (m Matcher) SkillTerms() []string {
	return m.skills
}

// Match reports whether r satisfies every set criterion.
func (m Matcher) Match(r *domain.Resume) bool {
	if m.experience != "" && r.Experience != m.experience {
		return false
	}
	if m.role != "" && !containsFold(r.Role, m.role) {
		return false
	}
	if len(m.skills) > 0 && !r.Skills.ContainsFold(m.skills) {
		return false
	}
	if m.query != "" {
		if !containsFold(r.Name, m.query) &&
			!containsFold(r.Email, m.query) &&
			!containsFold(r.Role, m.query) &&
			!containsFold(r.Projects, m.query) &&
			!containsFold(r.ResumeText, m.query) {
			return false
		}
	}
	return true
}

// containsFold expects term already lower-cased.
func containsFold(field, term string) bool {
	return strings.Contains(strings.ToLower(field), term)
}

// Less orders newest first, ties broken by id ascending.
func Less(a, b *domain.Resume) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

func Sort(items []domain.Resume) {
	sort.SliceStable(items, func(i, j int) bool { return Less(&items[i], &items[j]) })
}

// Window returns the [start, end) bounds of page within total items. Pages past
// the end yield an empty window.
func Window(total, page, pageSize int) (start, end int) {
	offset, ok := Offset(page, pageSize)
	if !ok || offset >= int64(total) {
		return total, total
	}
	start = int(offset)
	end = total
	if remaining := total - start; pageSize < remaining {
		end = start + pageSize
	}
	return start, end
}

// Offset is the row offset of page. ok is false for pages below 1 and for
// offsets that do not fit in an int64; both lie past any real result set.
func Offset(page, pageSize int) (offset int64, ok bool) {
	if page < 1 || pageSize < 1 {
		return 0, false
	}
	skipped := int64(page - 1)
	if skipped > math.MaxInt64/int64(pageSize) {
		return 0, false
	}
	return skipped * int64(pageSize), true
}
