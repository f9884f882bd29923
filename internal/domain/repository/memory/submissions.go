package memory

import (
	"context"
	"database/sql"
	"sort"

	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"
)

type submissionRepo struct {
	s *Store
}

func (r *submissionRepo) Create(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.submissions[sub.ID]; exists {
		return common.Conflict("Submission already exists")
	}
	if _, ok := r.s.teams[sub.TeamID]; !ok {
		return common.ValidationError("Team does not exist")
	}
	if _, ok := r.s.problems[sub.ProblemID]; !ok {
		return common.ValidationError("Problem does not exist")
	}
	now := r.s.tick()
	sub.CreatedAt, sub.UpdatedAt = now, now
	r.s.submissions[sub.ID] = *sub
	return nil
}

func (r *submissionRepo) Update(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.submissions[sub.ID]; !ok {
		return common.ErrNotFound
	}
	sub.UpdatedAt = r.s.tick()
	r.s.submissions[sub.ID] = *sub
	return nil
}

func (r *submissionRepo) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sub, ok := r.s.submissions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &sub, nil
}

func (r *submissionRepo) filter(match func(model.Submission) bool) []model.Submission {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	subs := []model.Submission{}
	for _, sub := range r.s.submissions {
		if match(sub) {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].UpdatedAt.After(subs[j].UpdatedAt) })
	return subs
}

func (r *submissionRepo) List(ctx context.Context) ([]model.Submission, error) {
	return r.filter(func(model.Submission) bool { return true }), nil
}

func (r *submissionRepo) ListByTeamID(ctx context.Context, teamID string) ([]model.Submission, error) {
	return r.filter(func(sub model.Submission) bool { return sub.TeamID == teamID }), nil
}

func (r *submissionRepo) ListByProblemID(ctx context.Context, problemID string) ([]model.Submission, error) {
	return r.filter(func(sub model.Submission) bool { return sub.ProblemID == problemID }), nil
}
