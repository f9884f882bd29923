package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"
)

type ProblemRepository interface {
	Create(ctx context.Context, tx *sql.Tx, problem *model.Problem) error
	Update(ctx context.Context, tx *sql.Tx, problem *model.Problem) error
	FindByID(ctx context.Context, id string) (*model.Problem, error)
	FindBySlug(ctx context.Context, slug string) (*model.Problem, error)
	List(ctx context.Context, activeOnly bool) ([]model.Problem, error)
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

const problemColumns = `id, title, slug, category, description, long_description, difficulty, prize, color,
	requirements, resources, timeline, evaluation, faqs, is_active, created_at, updated_at`

func scanProblem(row rowScanner) (*model.Problem, error) {
	p := &model.Problem{}
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Category, &p.Description, &p.LongDescription, &p.Difficulty, &p.Prize, &p.Color,
		&p.Requirements, &p.Resources, &p.Timeline, &p.Evaluation, &p.FAQs, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgProblemRepository) Create(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	query := `INSERT INTO problems (id, title, slug, category, description, long_description, difficulty, prize, color,
	              requirements, resources, timeline, evaluation, faqs, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	          RETURNING created_at, updated_at`
	err := conn(r.db, tx).QueryRowContext(ctx, query,
		p.ID, p.Title, p.Slug, p.Category, p.Description, p.LongDescription, p.Difficulty, p.Prize, p.Color,
		p.Requirements, p.Resources, p.Timeline, p.Evaluation, p.FAQs, p.IsActive,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return common.Conflict("A problem with this slug already exists")
		}
		return fmt.Errorf("pgProblemRepository.Create: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) Update(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	query := `UPDATE problems SET
	              title = $1, slug = $2, category = $3, description = $4, long_description = $5,
	              difficulty = $6, prize = $7, color = $8, requirements = $9, resources = $10,
	              timeline = $11, evaluation = $12, faqs = $13, is_active = $14, updated_at = now()
	          WHERE id = $15
	          RETURNING updated_at`
	err := conn(r.db, tx).QueryRowContext(ctx, query,
		p.Title, p.Slug, p.Category, p.Description, p.LongDescription,
		p.Difficulty, p.Prize, p.Color, p.Requirements, p.Resources,
		p.Timeline, p.Evaluation, p.FAQs, p.IsActive, p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		if common.IsUniqueViolation(err) {
			return common.Conflict("A problem with this slug already exists")
		}
		return fmt.Errorf("pgProblemRepository.Update: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) FindByID(ctx context.Context, id string) (*model.Problem, error) {
	if !isUUID(id) {
		return nil, common.ErrNotFound
	}
	p, err := scanProblem(r.db.QueryRowContext(ctx, `SELECT `+problemColumns+` FROM problems WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.FindByID: %w", err)
	}
	return p, nil
}

func (r *pgProblemRepository) FindBySlug(ctx context.Context, slug string) (*model.Problem, error) {
	p, err := scanProblem(r.db.QueryRowContext(ctx, `SELECT `+problemColumns+` FROM problems WHERE slug = $1`, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.FindBySlug: %w", err)
	}
	return p, nil
}

func (r *pgProblemRepository) List(ctx context.Context, activeOnly bool) ([]model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.List: %w", err)
	}
	defer rows.Close()

	problems := []model.Problem{}
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, fmt.Errorf("pgProblemRepository.List scan: %w", err)
		}
		problems = append(problems, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.List rows: %w", err)
	}
	return problems, nil
}
