package memory

import (
	"context"
	"database/sql"
	"sort"

	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"
)

type reviewRepo struct {
	s *Store
}

func (r *reviewRepo) Create(ctx context.Context, tx *sql.Tx, rv *model.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, other := range r.s.reviews {
		if id == rv.ID || (other.SubmissionID == rv.SubmissionID && other.ReviewerID == rv.ReviewerID) {
			return common.Conflict("You have already reviewed this submission")
		}
	}
	if _, ok := r.s.submissions[rv.SubmissionID]; !ok {
		return common.NotFound("Submission not found")
	}
	now := r.s.tick()
	rv.CreatedAt, rv.UpdatedAt = now, now
	r.s.reviews[rv.ID] = *rv
	return nil
}

func (r *reviewRepo) Update(ctx context.Context, tx *sql.Tx, rv *model.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reviews[rv.ID]; !ok {
		return common.ErrNotFound
	}
	rv.UpdatedAt = r.s.tick()
	r.s.reviews[rv.ID] = *rv
	return nil
}

func (r *reviewRepo) FindByID(ctx context.Context, id string) (*model.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rv, ok := r.s.reviews[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &rv, nil
}

func (r *reviewRepo) FindBySubmissionAndReviewer(ctx context.Context, tx *sql.Tx, submissionID, reviewerID string) (*model.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rv := range r.s.reviews {
		if rv.SubmissionID == submissionID && rv.ReviewerID == reviewerID {
			found := rv
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *reviewRepo) ListBySubmissionID(ctx context.Context, submissionID string) ([]model.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	reviews := []model.Review{}
	for _, rv := range r.s.reviews {
		if rv.SubmissionID == submissionID {
			reviews = append(reviews, rv)
		}
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].CreatedAt.Before(reviews[j].CreatedAt) })
	return reviews, nil
}
