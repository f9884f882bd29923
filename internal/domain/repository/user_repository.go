package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, tx *sql.Tx, user *model.User) error
	Update(ctx context.Context, tx *sql.Tx, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByAuthProvider(ctx context.Context, provider, providerID string) (*model.User, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, username, email, password, role, auth_provider, auth_provider_id,
	profile_picture, name, bio, github_username, phone, created_at, updated_at`

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.Password, &u.Role, &u.AuthProvider, &u.AuthProviderID,
		&u.ProfilePicture, &u.Name, &u.Bio, &u.GitHubUsername, &u.Phone, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *pgUserRepository) Create(ctx context.Context, tx *sql.Tx, u *model.User) error {
	query := `INSERT INTO users (id, username, email, password, role, auth_provider, auth_provider_id,
	              profile_picture, name, bio, github_username, phone)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING created_at, updated_at`
	err := conn(r.db, tx).QueryRowContext(ctx, query,
		u.ID, u.Username, u.Email, u.Password, u.Role, u.AuthProvider, u.AuthProviderID,
		u.ProfilePicture, u.Name, u.Bio, u.GitHubUsername, u.Phone,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return common.Conflict("User with this username or email already exists")
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) Update(ctx context.Context, tx *sql.Tx, u *model.User) error {
	query := `UPDATE users SET
	              username = $1, email = $2, password = $3, role = $4, auth_provider = $5,
	              auth_provider_id = $6, profile_picture = $7, name = $8, bio = $9,
	              github_username = $10, phone = $11, updated_at = now()
	          WHERE id = $12
	          RETURNING updated_at`
	err := conn(r.db, tx).QueryRowContext(ctx, query,
		u.Username, u.Email, u.Password, u.Role, u.AuthProvider,
		u.AuthProviderID, u.ProfilePicture, u.Name, u.Bio,
		u.GitHubUsername, u.Phone, u.ID,
	).Scan(&u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		if common.IsUniqueViolation(err) {
			return common.Conflict("User with this username or email already exists")
		}
		return fmt.Errorf("pgUserRepository.Update: %w", err)
	}
	return nil
}

func (r *pgUserRepository) findOne(ctx context.Context, op, where string, args ...interface{}) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.%s: %w", op, err)
	}
	return u, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if !isUUID(id) {
		return nil, common.ErrNotFound
	}
	return r.findOne(ctx, "FindByID", "id = $1", id)
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "FindByEmail", "lower(email) = lower($1)", email)
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, "FindByUsername", "username = $1", username)
}

func (r *pgUserRepository) FindByAuthProvider(ctx context.Context, provider, providerID string) (*model.User, error) {
	return r.findOne(ctx, "FindByAuthProvider", "auth_provider = $1 AND auth_provider_id = $2", provider, providerID)
}
