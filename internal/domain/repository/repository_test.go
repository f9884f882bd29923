package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	userID   = "3f1c2a9e-8b4d-4e6a-9c2b-5d7e8f9a0b1c"
	reviewID = "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"
	subID    = "9e8d7c6b-5a4f-4e3d-8c2b-1a0f9e8d7c6b"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
}

var userRowColumns = []string{
	"id", "username", "email", "password", "role", "auth_provider", "auth_provider_id",
	"profile_picture", "name", "bio", "github_username", "phone", "created_at", "updated_at",
}

func TestPgUserRepository_FindByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPgUserRepository(db)
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
			userID, "arjun", "arjun@example.com", "hash.salt", model.RoleParticipant, model.ProviderLocal, nil,
			nil, "Arjun", nil, nil, "555-0100", created, created,
		))
	u, err := repo.FindByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "arjun", u.Username)
	assert.Equal(t, model.RoleParticipant, u.Role)
	require.NotNil(t, u.Name)
	assert.Equal(t, "Arjun", *u.Name)
	assert.Nil(t, u.Bio)
	assert.Equal(t, created, u.CreatedAt)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(userRowColumns))
	_, err = repo.FindByID(ctx, userID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	// Malformed ids never reach the database.
	_, err = repo.FindByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPgUserRepository_FindByEmailIsCaseInsensitive(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPgUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE lower(email) = lower($1)")).
		WithArgs("Arjun@Example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns))
	_, err := repo.FindByEmail(context.Background(), "Arjun@Example.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPgUserRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPgUserRepository(db)
	ctx := context.Background()
	stamp := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	u := &model.User{ID: userID, Username: "arjun", Email: "arjun@example.com", Role: model.RoleParticipant, AuthProvider: model.ProviderLocal}
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(stamp, stamp))
	require.NoError(t, repo.Create(ctx, nil, u))
	assert.Equal(t, stamp, u.CreatedAt)
	assert.Equal(t, stamp, u.UpdatedAt)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).WillReturnError(uniqueViolation())
	err := repo.Create(ctx, nil, u)
	require.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, "User with this username or email already exists", common.PublicMessage(err))

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).WillReturnError(errors.New("connection reset"))
	err = repo.Create(ctx, nil, u)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrConflict)
	assert.Contains(t, err.Error(), "pgUserRepository.Create")
}

func TestPgUserRepository_UpdateMissingRow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPgUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("updated_at = now()")).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))
	err := repo.Update(context.Background(), nil, &model.User{ID: userID, Username: "ghost"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPgTeamRepository_CreateConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPgTeamRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO teams")).WillReturnError(uniqueViolation())
	err := repo.Create(context.Background(), nil, &model.Team{ID: subID, Name: "Cyber Innovators", Status: model.TeamPending})
	require.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, "A team with this name already exists", common.PublicMessage(err))

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO team_members")).WillReturnError(uniqueViolation())
	err = repo.AddMember(context.Background(), nil, &model.TeamMember{ID: reviewID, TeamID: subID, UserID: userID, Gender: model.GenderFemale})
	require.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, "User is already a member of this team", common.PublicMessage(err))
}

func TestPgReviewRepository_FindBySubmissionAndReviewerInTx(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPgReviewRepository(db)
	ctx := context.Background()
	stamp := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM reviews WHERE submission_id = $1 AND reviewer_id = $2")).
		WithArgs(subID, userID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "submission_id", "reviewer_id", "technical_score", "creativity_score", "usability_score",
			"completeness_score", "overall_score", "comments", "created_at", "updated_at",
		}).AddRow(reviewID, subID, userID, 8.0, 9.0, 9.0, 9.0, 8.6, nil, stamp, stamp))
	mock.ExpectCommit()

	var found *model.Review
	err := NewPgTransactor(db).WithinTx(ctx, func(tx *sql.Tx) error {
		var err error
		found, err = repo.FindBySubmissionAndReviewer(ctx, tx, subID, userID)
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, found.OverallScore)
	assert.Equal(t, 8.6, *found.OverallScore)
	assert.Nil(t, found.Comments)

	_, err = repo.FindBySubmissionAndReviewer(ctx, nil, "bad", userID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPgReviewRepository_ListBySubmissionID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPgReviewRepository(db)

	reviews, err := repo.ListBySubmissionID(context.Background(), "bad")
	require.NoError(t, err)
	assert.Empty(t, reviews)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at")).
		WithArgs(subID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	reviews, err = repo.ListBySubmissionID(context.Background(), subID)
	require.NoError(t, err)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
}

func TestPgTransactor_CommitsOnSuccess(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM team_members")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewPgTransactor(db).WithinTx(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec("DELETE FROM team_members WHERE team_id = $1", subID)
		return err
	})
	assert.NoError(t, err)
}

func TestPgTransactor_RollsBackOnError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPgTeamRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO teams")).WillReturnError(uniqueViolation())
	mock.ExpectRollback()

	err := NewPgTransactor(db).WithinTx(context.Background(), func(tx *sql.Tx) error {
		return repo.Create(context.Background(), tx, &model.Team{ID: subID, Name: "Dup", Status: model.TeamPending})
	})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestPgTransactor_RollsBackOnPanic(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_ = NewPgTransactor(db).WithinTx(context.Background(), func(tx *sql.Tx) error {
			panic("boom")
		})
	})
}

func TestPgTransactor_CommitFailure(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := NewPgTransactor(db).WithinTx(context.Background(), func(tx *sql.Tx) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit transaction")
}

func TestPgTransactor_BeginFailure(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	called := false
	err := NewPgTransactor(db).WithinTx(context.Background(), func(tx *sql.Tx) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.Contains(t, err.Error(), "begin transaction")
}
