package memory

import (
	"context"
	"database/sql"
	"sort"

	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"
)

type problemRepo struct {
	s *Store
}

func (r *problemRepo) slugTaken(p *model.Problem) bool {
	for id, other := range r.s.problems {
		if id != p.ID && other.Slug == p.Slug {
			return true
		}
	}
	return false
}

func (r *problemRepo) Create(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.problems[p.ID]; exists || r.slugTaken(p) {
		return common.Conflict("A problem with this slug already exists")
	}
	now := r.s.tick()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.problems[p.ID] = *p
	return nil
}

func (r *problemRepo) Update(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.problems[p.ID]; !ok {
		return common.ErrNotFound
	}
	if r.slugTaken(p) {
		return common.Conflict("A problem with this slug already exists")
	}
	p.UpdatedAt = r.s.tick()
	r.s.problems[p.ID] = *p
	return nil
}

func (r *problemRepo) FindByID(ctx context.Context, id string) (*model.Problem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.problems[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &p, nil
}

func (r *problemRepo) FindBySlug(ctx context.Context, slug string) (*model.Problem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.problems {
		if p.Slug == slug {
			found := p
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *problemRepo) List(ctx context.Context, activeOnly bool) ([]model.Problem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	problems := []model.Problem{}
	for _, p := range r.s.problems {
		if activeOnly && !p.IsActive {
			continue
		}
		problems = append(problems, p)
	}
	sort.Slice(problems, func(i, j int) bool { return problems[i].CreatedAt.Before(problems[j].CreatedAt) })
	return problems, nil
}
