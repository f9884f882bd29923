package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"
	"quickhacker/internal/domain/repository"

	"github.com/google/uuid"
)

type ReviewService struct {
	reviewRepo     repository.ReviewRepository
	submissionRepo repository.SubmissionRepository
	tx             repository.Transactor
}

func NewReviewService(reviewRepo repository.ReviewRepository, submissionRepo repository.SubmissionRepository, tx repository.Transactor) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, submissionRepo: submissionRepo, tx: tx}
}

func validReviewScores(scores ...*float64) bool {
	for _, v := range scores {
		if v != nil && (*v < model.MinReviewScore || *v > model.MaxReviewScore) {
			return false
		}
	}
	return true
}

func (s *ReviewService) ListBySubmission(ctx context.Context, submissionID string) ([]model.Review, error) {
	if _, err := s.submissionRepo.FindByID(ctx, submissionID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFound("Submission not found")
		}
		return nil, err
	}
	return s.reviewRepo.ListBySubmissionID(ctx, submissionID)
}

func (s *ReviewService) Get(ctx context.Context, id string) (*model.Review, error) {
	review, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFound("Review not found")
		}
		return nil, err
	}
	return review, nil
}

// Create adds actor's review. A submission still waiting in "submitted" moves to
// "under_review" in the same transaction.
func (s *ReviewService) Create(ctx context.Context, actor *model.User, req model.CreateReviewRequest) (*model.Review, error) {
	if req.SubmissionID == "" {
		return nil, common.ValidationError("submissionId is required")
	}
	if !validReviewScores(req.TechnicalScore, req.CreativityScore, req.UsabilityScore, req.CompletenessScore, req.OverallScore) {
		return nil, common.ValidationError("Scores must be between %d and %d", model.MinReviewScore, model.MaxReviewScore)
	}
	sub, err := s.submissionRepo.FindByID(ctx, req.SubmissionID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFound("Submission not found")
		}
		return nil, err
	}

	review := &model.Review{
		ID:                uuid.NewString(),
		SubmissionID:      sub.ID,
		ReviewerID:        actor.ID,
		TechnicalScore:    req.TechnicalScore,
		CreativityScore:   req.CreativityScore,
		UsabilityScore:    req.UsabilityScore,
		CompletenessScore: req.CompletenessScore,
		OverallScore:      req.OverallScore,
		Comments:          req.Comments,
	}
	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.reviewRepo.Create(ctx, tx, review); err != nil {
			return err
		}
		if sub.Status == model.SubmissionSubmitted {
			sub.Status = model.SubmissionUnderReview
			return s.submissionRepo.Update(ctx, tx, sub)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return review, nil
}

// Update lets the review's author or an admin change it.
func (s *ReviewService) Update(ctx context.Context, actor *model.User, id string, patch model.ReviewPatch) (*model.Review, error) {
	review, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.ReviewerID != actor.ID && actor.Role != model.RoleAdmin {
		return nil, common.Forbidden("You can only update your own reviews")
	}
	if !validReviewScores(patch.TechnicalScore, patch.CreativityScore, patch.UsabilityScore, patch.CompletenessScore, patch.OverallScore) {
		return nil, common.ValidationError("Scores must be between %d and %d", model.MinReviewScore, model.MaxReviewScore)
	}
	patch.Apply(review)
	if err := s.reviewRepo.Update(ctx, nil, review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	return review, nil
}
