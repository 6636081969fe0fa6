// Package memory keeps resumes and users in process memory. It backs local
// development and the HTTP tests when no DATABASE_URL is configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"resume-hub/internal/domain"
	"resume-hub/internal/search"
	"resume-hub/pkg/apperror"
)

// snapshot is never mutated once published. Writers build a new one.
type snapshot struct {
	byID    map[string]*domain.Resume
	byOwner map[string]string
	bySkill map[string]map[string]struct{} // lower-cased skill -> resume ids
	ordered []*domain.Resume                // newest first, ties by id
}

func emptySnapshot() *snapshot {
	return &snapshot{
		byID:    map[string]*domain.Resume{},
		byOwner: map[string]string{},
		bySkill: map[string]map[string]struct{}{},
	}
}

func (s *snapshot) clone() *snapshot {
	next := &snapshot{
		byID:    make(map[string]*domain.Resume, len(s.byID)+1),
		byOwner: make(map[string]string, len(s.byOwner)+1),
		bySkill: make(map[string]map[string]struct{}, len(s.bySkill)),
		ordered: make([]*domain.Resume, len(s.ordered), len(s.ordered)+1),
	}
	for k, v := range s.byID {
		next.byID[k] = v
	}
	for k, v := range s.byOwner {
		next.byOwner[k] = v
	}
	for k, ids := range s.bySkill {
		next.bySkill[k] = ids
	}
	copy(next.ordered, s.ordered)
	return next
}

// indexSkills and unindexSkills copy each touched posting set before writing it.
func (s *snapshot) indexSkills(r *domain.Resume) {
	for _, skill := range r.Skills {
		key := strings.ToLower(skill)
		ids := make(map[string]struct{}, len(s.bySkill[key])+1)
		for id := range s.bySkill[key] {
			ids[id] = struct{}{}
		}
		ids[r.ID] = struct{}{}
		s.bySkill[key] = ids
	}
}

func (s *snapshot) unindexSkills(r *domain.Resume) {
	for _, skill := range r.Skills {
		key := strings.ToLower(skill)
		if _, ok := s.bySkill[key][r.ID]; !ok {
			continue
		}
		if len(s.bySkill[key]) == 1 {
			delete(s.bySkill, key)
			continue
		}
		ids := make(map[string]struct{}, len(s.bySkill[key]))
		for id := range s.bySkill[key] {
			if id != r.ID {
				ids[id] = struct{}{}
			}
		}
		s.bySkill[key] = ids
	}
}

func (s *snapshot) position(r *domain.Resume) int {
	return sort.Search(len(s.ordered), func(i int) bool {
		return !search.Less(s.ordered[i], r)
	})
}

type resumeRepository struct {
	mu   sync.Mutex // serializes writers; readers only load snap
	snap atomic.Pointer[snapshot]
}

func NewResumeRepository() domain.ResumeRepository {
	repo := &resumeRepository{}
	repo.snap.Store(emptySnapshot())
	return repo
}

func (r *resumeRepository) GetByOwner(ctx context.Context, ownerID string) (*domain.Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := r.snap.Load()
	id, ok := snap.byOwner[ownerID]
	if !ok {
		return nil, nil
	}
	out := snap.byID[id].Clone()
	return &out, nil
}

func (r *resumeRepository) Create(ctx context.Context, resume *domain.Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := resume.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snap.Load()
	if _, taken := cur.byOwner[stored.OwnerID]; taken {
		return apperror.Conflict("candidate already has a resume")
	}
	if _, taken := cur.byID[stored.ID]; taken {
		return apperror.Conflict("resume id already exists")
	}

	next := cur.clone()
	next.byID[stored.ID] = &stored
	next.byOwner[stored.OwnerID] = stored.ID
	next.indexSkills(&stored)
	at := next.position(&stored)
	next.ordered = append(next.ordered, nil)
	copy(next.ordered[at+1:], next.ordered[at:])
	next.ordered[at] = &stored

	r.snap.Store(next)
	return nil
}

func (r *resumeRepository) Update(ctx context.Context, id string, mutate func(*domain.Resume) error) (*domain.Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snap.Load()
	old, ok := cur.byID[id]
	if !ok {
		return nil, apperror.NotFound("resume not found")
	}

	updated := old.Clone()
	if err := mutate(&updated); err != nil {
		return nil, err
	}
	updated.ID = old.ID
	updated.OwnerID = old.OwnerID
	updated.CreatedAt = old.CreatedAt

	next := cur.clone()
	next.unindexSkills(old)
	next.byID[id] = &updated
	next.indexSkills(&updated)
	next.ordered[next.position(old)] = &updated

	r.snap.Store(next)
	out := updated.Clone()
	return &out, nil
}

func (r *resumeRepository) Delete(ctx context.Context, id string, check func(*domain.Resume) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snap.Load()
	old, ok := cur.byID[id]
	if !ok {
		return apperror.NotFound("resume not found")
	}
	view := old.Clone()
	if err := check(&view); err != nil {
		return err
	}

	next := cur.clone()
	next.unindexSkills(old)
	delete(next.byID, id)
	delete(next.byOwner, old.OwnerID)
	at := next.position(old)
	next.ordered = append(next.ordered[:at], next.ordered[at+1:]...)

	r.snap.Store(next)
	return nil
}

func (r *resumeRepository) Search(ctx context.Context, query domain.SearchQuery) ([]domain.Resume, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	snap := r.snap.Load()
	matcher := search.Compile(query.Filter)

	// With a skills filter only resumes in the posting sets can match.
	var candidates map[string]struct{}
	if terms := matcher.SkillTerms(); len(terms) > 0 {
		candidates = map[string]struct{}{}
		for _, term := range terms {
			for id := range snap.bySkill[term] {
				candidates[id] = struct{}{}
			}
		}
	}

	var matched []*domain.Resume
	for _, res := range snap.ordered {
		if candidates != nil {
			if _, ok := candidates[res.ID]; !ok {
				continue
			}
		}
		if matcher.Match(res) {
			matched = append(matched, res)
		}
	}

	start, end := search.Window(len(matched), query.Page, query.PageSize)
	items := make([]domain.Resume, 0, end-start)
	for _, res := range matched[start:end] {
		items = append(items, res.Clone())
	}
	return items, int64(len(matched)), nil
}

func (r *resumeRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
