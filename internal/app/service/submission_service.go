package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"
	"quickhacker/internal/domain/repository"

	"github.com/google/uuid"
)

const reviewerFieldsMessage = "You can only update feedback, score, and status"

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	teamRepo       repository.TeamRepository
	problemRepo    repository.ProblemRepository
	reviewRepo     repository.ReviewRepository
	tx             repository.Transactor
	now            func() time.Time
}

func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	teamRepo repository.TeamRepository,
	problemRepo repository.ProblemRepository,
	reviewRepo repository.ReviewRepository,
	tx repository.Transactor,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: submissionRepo,
		teamRepo:       teamRepo,
		problemRepo:    problemRepo,
		reviewRepo:     reviewRepo,
		tx:             tx,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

type SubmissionFilter struct {
	TeamID    string
	ProblemID string
}

func canReview(u *model.User) bool {
	return u.Role == model.RoleAdmin || u.Role == model.RoleJudge
}

func (s *SubmissionService) isMember(ctx context.Context, teamID, userID string) (bool, error) {
	_, err := s.teamRepo.GetMembership(ctx, teamID, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	return false, err
}

func (s *SubmissionService) find(ctx context.Context, id string) (*model.Submission, error) {
	sub, err := s.submissionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFound("Submission not found")
		}
		return nil, err
	}
	return sub, nil
}

// List scopes the listing by caller: team filters need membership or staff role,
// problem filters need staff role, and the unfiltered list is admin-only.
func (s *SubmissionService) List(ctx context.Context, actor *model.User, filter SubmissionFilter) ([]model.Submission, error) {
	switch {
	case filter.TeamID != "":
		if !model.IsStaff(actor.Role) {
			ok, err := s.isMember(ctx, filter.TeamID, actor.ID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, common.Forbidden("You are not a member of this team")
			}
		}
		return s.submissionRepo.ListByTeamID(ctx, filter.TeamID)
	case filter.ProblemID != "":
		if !model.IsStaff(actor.Role) {
			return nil, common.Forbidden("Forbidden: Insufficient permissions")
		}
		return s.submissionRepo.ListByProblemID(ctx, filter.ProblemID)
	}
	if actor.Role != model.RoleAdmin {
		return nil, common.Forbidden("Forbidden: Admin access required")
	}
	return s.submissionRepo.List(ctx)
}

// Get returns the submission and, for admins and judges only, its reviews.
// A nil review slice means the caller may not see reviews.
func (s *SubmissionService) Get(ctx context.Context, actor *model.User, id string) (*model.Submission, []model.Review, error) {
	sub, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !model.IsStaff(actor.Role) {
		ok, err := s.isMember(ctx, sub.TeamID, actor.ID)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, common.Forbidden("You are not a member of this team")
		}
	}
	if !canReview(actor) {
		return sub, nil, nil
	}
	reviews, err := s.reviewRepo.ListBySubmissionID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load reviews: %w", err)
	}
	return sub, reviews, nil
}

func (s *SubmissionService) Create(ctx context.Context, actor *model.User, req model.CreateSubmissionRequest) (*model.Submission, error) {
	if req.TeamID == "" || req.ProblemID == "" || strings.TrimSpace(req.Title) == "" ||
		strings.TrimSpace(req.Description) == "" || strings.TrimSpace(req.RepositoryURL) == "" {
		return nil, common.ValidationError("teamId, problemId, title, description and repositoryUrl are required")
	}
	if req.Status == "" {
		req.Status = model.SubmissionDraft
	}
	if !req.Status.TeamSettable() {
		return nil, common.ValidationError("A new submission must be draft or submitted")
	}

	if _, err := s.teamRepo.FindByID(ctx, req.TeamID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ValidationError("Team does not exist")
		}
		return nil, err
	}
	if actor.Role != model.RoleAdmin {
		ok, err := s.isMember(ctx, req.TeamID, actor.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, common.Forbidden("You are not a member of this team")
		}
	}
	if _, err := s.problemRepo.FindByID(ctx, req.ProblemID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ValidationError("Problem does not exist")
		}
		return nil, err
	}

	sub := &model.Submission{
		ID:            uuid.NewString(),
		TeamID:        req.TeamID,
		ProblemID:     req.ProblemID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		RepositoryURL: strings.TrimSpace(req.RepositoryURL),
		DemoURL:       req.DemoURL,
		Technologies:  req.Technologies,
		Screenshots:   req.Screenshots,
	}
	sub.MarkStatus(req.Status, s.now())
	if err := s.submissionRepo.Create(ctx, nil, sub); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	return sub, nil
}

// decodeStrict decodes body into dest rejecting keys dest does not declare.
// It reports unknown keys separately from malformed JSON.
func decodeStrict(body []byte, dest interface{}) (unknownField bool, err error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		if strings.HasPrefix(err.Error(), "json: unknown field ") {
			return true, err
		}
		return false, common.ValidationError("Invalid request payload")
	}
	return false, nil
}

func validScore(score *float64) bool {
	return score == nil || (*score >= 0 && *score <= model.MaxSubmissionScore)
}

// Update applies body to submission id with the field allow-list of the caller's role.
func (s *SubmissionService) Update(ctx context.Context, actor *model.User, id string, body []byte) (*model.Submission, error) {
	sub, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case model.RoleAdmin:
		var patch model.SubmissionAdminPatch
		if unknown, err := decodeStrict(body, &patch); err != nil {
			if unknown {
				return nil, common.ValidationError("Unknown submission field")
			}
			return nil, err
		}
		if patch.Status != nil && !patch.Status.Valid() {
			return nil, common.ValidationError("Invalid submission status")
		}
		if !validScore(patch.Score) {
			return nil, common.ValidationError("Score must be between 0 and %d", model.MaxSubmissionScore)
		}
		patch.Apply(sub, s.now())

	case model.RoleJudge, model.RoleMentor:
		var patch model.SubmissionReviewerPatch
		if unknown, err := decodeStrict(body, &patch); err != nil {
			if unknown {
				return nil, common.Forbidden(reviewerFieldsMessage)
			}
			return nil, err
		}
		if patch.Status != nil && !patch.Status.Valid() {
			return nil, common.ValidationError("Invalid submission status")
		}
		if !validScore(patch.Score) {
			return nil, common.ValidationError("Score must be between 0 and %d", model.MaxSubmissionScore)
		}
		patch.Apply(sub, s.now())

	default:
		ok, err := s.isMember(ctx, sub.TeamID, actor.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, common.Forbidden("You are not a member of this team")
		}
		var patch model.SubmissionTeamPatch
		if unknown, err := decodeStrict(body, &patch); err != nil {
			if unknown {
				return nil, common.Forbidden("Teams cannot update review fields")
			}
			return nil, err
		}
		if patch.Status != nil && !patch.Status.TeamSettable() {
			return nil, common.Forbidden("Teams can only set status to draft or submitted")
		}
		resubmit := patch.Status != nil && *patch.Status == model.SubmissionSubmitted
		editable := sub.Status == model.SubmissionDraft || (sub.Status == model.SubmissionSubmitted && resubmit)
		if !editable {
			return nil, common.Forbidden("Cannot update a submission that has been reviewed")
		}
		patch.Apply(sub, s.now())
	}

	if err := s.submissionRepo.Update(ctx, nil, sub); err != nil {
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}
	return sub, nil
}

// Evaluate records the actor's scored review and moves the submission to the
// given judging status in one transaction. A reviewer re-evaluating replaces
// their earlier review.
func (s *SubmissionService) Evaluate(ctx context.Context, actor *model.User, id string, req model.EvaluateRequest) (*model.EvaluationResult, error) {
	if !canReview(actor) {
		return nil, common.Forbidden("Forbidden: Insufficient permissions")
	}
	if !req.Status.Evaluated() {
		return nil, common.ValidationError("Status must be under_review, accepted or rejected")
	}
	if !req.Scores.Complete() {
		return nil, common.ValidationError("All five scores are required")
	}
	for _, v := range req.Scores.All() {
		if v < model.MinReviewScore || v > model.MaxReviewScore {
			return nil, common.ValidationError("Scores must be between %d and %d", model.MinReviewScore, model.MaxReviewScore)
		}
	}

	sub, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	overall := req.Scores.Overall()
	sub.MarkStatus(req.Status, s.now())
	sub.Score = &overall

	var review *model.Review
	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		// The submission update locks its row, so concurrent evaluations
		// of the same submission see each other's reviews.
		if err := s.submissionRepo.Update(ctx, tx, sub); err != nil {
			return err
		}
		existing, err := s.reviewRepo.FindBySubmissionAndReviewer(ctx, tx, id, actor.ID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
		review = existing
		if review == nil {
			review = &model.Review{ID: uuid.NewString(), SubmissionID: id, ReviewerID: actor.ID}
		}
		req.Scores.ApplyTo(review)
		review.Comments = req.Notes
		if existing != nil {
			return s.reviewRepo.Update(ctx, tx, review)
		}
		return s.reviewRepo.Create(ctx, tx, review)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate submission: %w", err)
	}
	return &model.EvaluationResult{Submission: sub, Review: review}, nil
}
