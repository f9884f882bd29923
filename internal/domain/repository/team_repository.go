package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"
)

type TeamRepository interface {
	Create(ctx context.Context, tx *sql.Tx, team *model.Team) error
	Update(ctx context.Context, tx *sql.Tx, team *model.Team) error
	FindByID(ctx context.Context, id string) (*model.Team, error)
	FindByName(ctx context.Context, name string) (*model.Team, error)
	List(ctx context.Context) ([]model.Team, error)
	ListByProblemID(ctx context.Context, problemID string) ([]model.Team, error)
	ListByUserID(ctx context.Context, userID string) ([]model.Team, error)

	AddMember(ctx context.Context, tx *sql.Tx, member *model.TeamMember) error
	RemoveMember(ctx context.Context, tx *sql.Tx, teamID, userID string) error
	GetMembers(ctx context.Context, teamID string) ([]model.MemberProfile, error)
	GetMembership(ctx context.Context, teamID, userID string) (*model.TeamMember, error)
	FindLeader(ctx context.Context, teamID string) (*model.TeamMember, error)
}

type pgTeamRepository struct {
	db *sql.DB
}

func NewPgTeamRepository(db *sql.DB) TeamRepository {
	return &pgTeamRepository{db: db}
}

const teamColumns = `t.id, t.name, t.description, t.repository_url, t.team_size, t.looking_for_members,
	t.problem_id, t.status, t.created_at, t.updated_at`

func scanTeam(row rowScanner) (*model.Team, error) {
	t := &model.Team{}
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.RepositoryURL, &t.TeamSize, &t.LookingForMembers,
		&t.ProblemID, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *pgTeamRepository) Create(ctx context.Context, tx *sql.Tx, t *model.Team) error {
	query := `INSERT INTO teams (id, name, description, repository_url, team_size, looking_for_members, problem_id, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING created_at, updated_at`
	err := conn(r.db, tx).QueryRowContext(ctx, query,
		t.ID, t.Name, t.Description, t.RepositoryURL, t.TeamSize, t.LookingForMembers, t.ProblemID, t.Status,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return common.Conflict("A team with this name already exists")
		}
		return fmt.Errorf("pgTeamRepository.Create: %w", err)
	}
	return nil
}

func (r *pgTeamRepository) Update(ctx context.Context, tx *sql.Tx, t *model.Team) error {
	query := `UPDATE teams SET
	              name = $1, description = $2, repository_url = $3, team_size = $4,
	              looking_for_members = $5, problem_id = $6, status = $7, updated_at = now()
	          WHERE id = $8
	          RETURNING updated_at`
	err := conn(r.db, tx).QueryRowContext(ctx, query,
		t.Name, t.Description, t.RepositoryURL, t.TeamSize, t.LookingForMembers, t.ProblemID, t.Status, t.ID,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		if common.IsUniqueViolation(err) {
			return common.Conflict("A team with this name already exists")
		}
		return fmt.Errorf("pgTeamRepository.Update: %w", err)
	}
	return nil
}

func (r *pgTeamRepository) FindByID(ctx context.Context, id string) (*model.Team, error) {
	if !isUUID(id) {
		return nil, common.ErrNotFound
	}
	t, err := scanTeam(r.db.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams t WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTeamRepository.FindByID: %w", err)
	}
	return t, nil
}

func (r *pgTeamRepository) FindByName(ctx context.Context, name string) (*model.Team, error) {
	t, err := scanTeam(r.db.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams t WHERE t.name = $1`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTeamRepository.FindByName: %w", err)
	}
	return t, nil
}

func (r *pgTeamRepository) listTeams(ctx context.Context, op, query string, args ...interface{}) ([]model.Team, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgTeamRepository.%s: %w", op, err)
	}
	defer rows.Close()

	teams := []model.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("pgTeamRepository.%s scan: %w", op, err)
		}
		teams = append(teams, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTeamRepository.%s rows: %w", op, err)
	}
	return teams, nil
}

func (r *pgTeamRepository) List(ctx context.Context) ([]model.Team, error) {
	return r.listTeams(ctx, "List", `SELECT `+teamColumns+` FROM teams t ORDER BY t.created_at DESC`)
}

func (r *pgTeamRepository) ListByProblemID(ctx context.Context, problemID string) ([]model.Team, error) {
	if !isUUID(problemID) {
		return []model.Team{}, nil
	}
	return r.listTeams(ctx, "ListByProblemID",
		`SELECT `+teamColumns+` FROM teams t WHERE t.problem_id = $1 ORDER BY t.created_at DESC`, problemID)
}

func (r *pgTeamRepository) ListByUserID(ctx context.Context, userID string) ([]model.Team, error) {
	if !isUUID(userID) {
		return []model.Team{}, nil
	}
	return r.listTeams(ctx, "ListByUserID",
		`SELECT `+teamColumns+` FROM teams t
		 INNER JOIN team_members tm ON tm.team_id = t.id
		 WHERE tm.user_id = $1
		 ORDER BY tm.joined_at`, userID)
}

func (r *pgTeamRepository) AddMember(ctx context.Context, tx *sql.Tx, m *model.TeamMember) error {
	query := `INSERT INTO team_members (id, team_id, user_id, is_leader, gender)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING joined_at`
	err := conn(r.db, tx).QueryRowContext(ctx, query, m.ID, m.TeamID, m.UserID, m.IsLeader, m.Gender).Scan(&m.JoinedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return common.Conflict("User is already a member of this team")
		}
		return fmt.Errorf("pgTeamRepository.AddMember: %w", err)
	}
	return nil
}

func (r *pgTeamRepository) RemoveMember(ctx context.Context, tx *sql.Tx, teamID, userID string) error {
	if !isUUID(teamID) || !isUUID(userID) {
		return common.ErrNotFound
	}
	res, err := conn(r.db, tx).ExecContext(ctx, `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return fmt.Errorf("pgTeamRepository.RemoveMember: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgTeamRepository) GetMembers(ctx context.Context, teamID string) ([]model.MemberProfile, error) {
	if !isUUID(teamID) {
		return []model.MemberProfile{}, nil
	}
	query := `SELECT u.id, u.username, u.email, u.password, u.role, u.auth_provider, u.auth_provider_id,
	                 u.profile_picture, u.name, u.bio, u.github_username, u.phone, u.created_at, u.updated_at,
	                 tm.is_leader, tm.gender, tm.joined_at
	          FROM team_members tm
	          INNER JOIN users u ON u.id = tm.user_id
	          WHERE tm.team_id = $1
	          ORDER BY tm.is_leader DESC, tm.joined_at`
	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("pgTeamRepository.GetMembers: %w", err)
	}
	defer rows.Close()

	members := []model.MemberProfile{}
	for rows.Next() {
		var m model.MemberProfile
		u := &m.User
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.Password, &u.Role, &u.AuthProvider, &u.AuthProviderID,
			&u.ProfilePicture, &u.Name, &u.Bio, &u.GitHubUsername, &u.Phone, &u.CreatedAt, &u.UpdatedAt,
			&m.IsLeader, &m.Gender, &m.JoinedAt,
		); err != nil {
			return nil, fmt.Errorf("pgTeamRepository.GetMembers scan: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTeamRepository.GetMembers rows: %w", err)
	}
	return members, nil
}

func (r *pgTeamRepository) findMember(ctx context.Context, op, where string, args ...interface{}) (*model.TeamMember, error) {
	query := `SELECT id, team_id, user_id, is_leader, gender, joined_at FROM team_members WHERE ` + where
	m := &model.TeamMember{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&m.ID, &m.TeamID, &m.UserID, &m.IsLeader, &m.Gender, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTeamRepository.%s: %w", op, err)
	}
	return m, nil
}

func (r *pgTeamRepository) GetMembership(ctx context.Context, teamID, userID string) (*model.TeamMember, error) {
	if !isUUID(teamID) || !isUUID(userID) {
		return nil, common.ErrNotFound
	}
	return r.findMember(ctx, "GetMembership", "team_id = $1 AND user_id = $2", teamID, userID)
}

func (r *pgTeamRepository) FindLeader(ctx context.Context, teamID string) (*model.TeamMember, error) {
	if !isUUID(teamID) {
		return nil, common.ErrNotFound
	}
	return r.findMember(ctx, "FindLeader", "team_id = $1 AND is_leader ORDER BY joined_at LIMIT 1", teamID)
}
