package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"
)

type SubmissionRepository interface {
	Create(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	Update(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	FindByID(ctx context.Context, id string) (*model.Submission, error)
	List(ctx context.Context) ([]model.Submission, error)
	ListByTeamID(ctx context.Context, teamID string) ([]model.Submission, error)
	ListByProblemID(ctx context.Context, problemID string) ([]model.Submission, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

const submissionColumns = `id, team_id, problem_id, title, description, repository_url, demo_url,
	technologies, screenshots, status, feedback, score, submitted_at, created_at, updated_at`

func scanSubmission(row rowScanner) (*model.Submission, error) {
	s := &model.Submission{}
	err := row.Scan(
		&s.ID, &s.TeamID, &s.ProblemID, &s.Title, &s.Description, &s.RepositoryURL, &s.DemoURL,
		&s.Technologies, &s.Screenshots, &s.Status, &s.Feedback, &s.Score, &s.SubmittedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *pgSubmissionRepository) Create(ctx context.Context, tx *sql.Tx, s *model.Submission) error {
	query := `INSERT INTO submissions (id, team_id, problem_id, title, description, repository_url, demo_url,
	              technologies, screenshots, status, feedback, score, submitted_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          RETURNING created_at, updated_at`
	err := conn(r.db, tx).QueryRowContext(ctx, query,
		s.ID, s.TeamID, s.ProblemID, s.Title, s.Description, s.RepositoryURL, s.DemoURL,
		s.Technologies, s.Screenshots, s.Status, s.Feedback, s.Score, s.SubmittedAt,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) Update(ctx context.Context, tx *sql.Tx, s *model.Submission) error {
	query := `UPDATE submissions SET
	              title = $1, description = $2, repository_url = $3, demo_url = $4, technologies = $5,
	              screenshots = $6, status = $7, feedback = $8, score = $9, submitted_at = $10, updated_at = now()
	          WHERE id = $11
	          RETURNING updated_at`
	err := conn(r.db, tx).QueryRowContext(ctx, query,
		s.Title, s.Description, s.RepositoryURL, s.DemoURL, s.Technologies,
		s.Screenshots, s.Status, s.Feedback, s.Score, s.SubmittedAt, s.ID,
	).Scan(&s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		return fmt.Errorf("pgSubmissionRepository.Update: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	if !isUUID(id) {
		return nil, common.ErrNotFound
	}
	s, err := scanSubmission(r.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.FindByID: %w", err)
	}
	return s, nil
}

func (r *pgSubmissionRepository) list(ctx context.Context, op, where string, args ...interface{}) ([]model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.%s: %w", op, err)
	}
	defer rows.Close()

	subs := []model.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.%s scan: %w", op, err)
		}
		subs = append(subs, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.%s rows: %w", op, err)
	}
	return subs, nil
}

func (r *pgSubmissionRepository) List(ctx context.Context) ([]model.Submission, error) {
	return r.list(ctx, "List", "")
}

func (r *pgSubmissionRepository) ListByTeamID(ctx context.Context, teamID string) ([]model.Submission, error) {
	if !isUUID(teamID) {
		return []model.Submission{}, nil
	}
	return r.list(ctx, "ListByTeamID", "team_id = $1", teamID)
}

func (r *pgSubmissionRepository) ListByProblemID(ctx context.Context, problemID string) ([]model.Submission, error) {
	if !isUUID(problemID) {
		return []model.Submission{}, nil
	}
	return r.list(ctx, "ListByProblemID", "problem_id = $1", problemID)
}
