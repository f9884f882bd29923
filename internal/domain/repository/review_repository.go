package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"
)

type ReviewRepository interface {
	Create(ctx context.Context, tx *sql.Tx, review *model.Review) error
	Update(ctx context.Context, tx *sql.Tx, review *model.Review) error
	FindByID(ctx context.Context, id string) (*model.Review, error)
	FindBySubmissionAndReviewer(ctx context.Context, tx *sql.Tx, submissionID, reviewerID string) (*model.Review, error)
	ListBySubmissionID(ctx context.Context, submissionID string) ([]model.Review, error)
}

type pgReviewRepository struct {
	db *sql.DB
}

func NewPgReviewRepository(db *sql.DB) ReviewRepository {
	return &pgReviewRepository{db: db}
}

const reviewColumns = `id, submission_id, reviewer_id, technical_score, creativity_score, usability_score,
	completeness_score, overall_score, comments, created_at, updated_at`

func scanReview(row rowScanner) (*model.Review, error) {
	rv := &model.Review{}
	err := row.Scan(
		&rv.ID, &rv.SubmissionID, &rv.ReviewerID, &rv.TechnicalScore, &rv.CreativityScore, &rv.UsabilityScore,
		&rv.CompletenessScore, &rv.OverallScore, &rv.Comments, &rv.CreatedAt, &rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func (r *pgReviewRepository) Create(ctx context.Context, tx *sql.Tx, rv *model.Review) error {
	query := `INSERT INTO reviews (id, submission_id, reviewer_id, technical_score, creativity_score,
	              usability_score, completeness_score, overall_score, comments)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING created_at, updated_at`
	err := conn(r.db, tx).QueryRowContext(ctx, query,
		rv.ID, rv.SubmissionID, rv.ReviewerID, rv.TechnicalScore, rv.CreativityScore,
		rv.UsabilityScore, rv.CompletenessScore, rv.OverallScore, rv.Comments,
	).Scan(&rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return common.Conflict("You have already reviewed this submission")
		}
		return fmt.Errorf("pgReviewRepository.Create: %w", err)
	}
	return nil
}

func (r *pgReviewRepository) Update(ctx context.Context, tx *sql.Tx, rv *model.Review) error {
	query := `UPDATE reviews SET
	              technical_score = $1, creativity_score = $2, usability_score = $3,
	              completeness_score = $4, overall_score = $5, comments = $6, updated_at = now()
	          WHERE id = $7
	          RETURNING updated_at`
	err := conn(r.db, tx).QueryRowContext(ctx, query,
		rv.TechnicalScore, rv.CreativityScore, rv.UsabilityScore,
		rv.CompletenessScore, rv.OverallScore, rv.Comments, rv.ID,
	).Scan(&rv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		return fmt.Errorf("pgReviewRepository.Update: %w", err)
	}
	return nil
}

func (r *pgReviewRepository) FindByID(ctx context.Context, id string) (*model.Review, error) {
	if !isUUID(id) {
		return nil, common.ErrNotFound
	}
	rv, err := scanReview(r.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgReviewRepository.FindByID: %w", err)
	}
	return rv, nil
}

func (r *pgReviewRepository) FindBySubmissionAndReviewer(ctx context.Context, tx *sql.Tx, submissionID, reviewerID string) (*model.Review, error) {
	if !isUUID(submissionID) || !isUUID(reviewerID) {
		return nil, common.ErrNotFound
	}
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE submission_id = $1 AND reviewer_id = $2`
	rv, err := scanReview(conn(r.db, tx).QueryRowContext(ctx, query, submissionID, reviewerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgReviewRepository.FindBySubmissionAndReviewer: %w", err)
	}
	return rv, nil
}

func (r *pgReviewRepository) ListBySubmissionID(ctx context.Context, submissionID string) ([]model.Review, error) {
	if !isUUID(submissionID) {
		return []model.Review{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE submission_id = $1 ORDER BY created_at`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("pgReviewRepository.ListBySubmissionID: %w", err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("pgReviewRepository.ListBySubmissionID scan: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgReviewRepository.ListBySubmissionID rows: %w", err)
	}
	return reviews, nil
}
