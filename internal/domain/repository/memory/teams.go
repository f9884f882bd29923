package memory

import (
	"context"
	"database/sql"
	"sort"

	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"
)

type teamRepo struct {
	s *Store
}

func (r *teamRepo) nameTaken(t *model.Team) bool {
	for id, other := range r.s.teams {
		if id != t.ID && other.Name == t.Name {
			return true
		}
	}
	return false
}

func (r *teamRepo) Create(ctx context.Context, tx *sql.Tx, t *model.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.teams[t.ID]; exists || r.nameTaken(t) {
		return common.Conflict("A team with this name already exists")
	}
	now := r.s.tick()
	t.CreatedAt, t.UpdatedAt = now, now
	r.s.teams[t.ID] = *t
	return nil
}

func (r *teamRepo) Update(ctx context.Context, tx *sql.Tx, t *model.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.teams[t.ID]; !ok {
		return common.ErrNotFound
	}
	if r.nameTaken(t) {
		return common.Conflict("A team with this name already exists")
	}
	t.UpdatedAt = r.s.tick()
	r.s.teams[t.ID] = *t
	return nil
}

func (r *teamRepo) FindByID(ctx context.Context, id string) (*model.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.teams[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &t, nil
}

func (r *teamRepo) FindByName(ctx context.Context, name string) (*model.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, t := range r.s.teams {
		if t.Name == name {
			found := t
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *teamRepo) filter(match func(model.Team) bool) []model.Team {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	teams := []model.Team{}
	for _, t := range r.s.teams {
		if match(t) {
			teams = append(teams, t)
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].CreatedAt.After(teams[j].CreatedAt) })
	return teams
}

func (r *teamRepo) List(ctx context.Context) ([]model.Team, error) {
	return r.filter(func(model.Team) bool { return true }), nil
}

func (r *teamRepo) ListByProblemID(ctx context.Context, problemID string) ([]model.Team, error) {
	return r.filter(func(t model.Team) bool { return t.ProblemID != nil && *t.ProblemID == problemID }), nil
}

func (r *teamRepo) ListByUserID(ctx context.Context, userID string) ([]model.Team, error) {
	r.s.mu.RLock()
	joined := map[string]bool{}
	for _, m := range r.s.members {
		if m.UserID == userID {
			joined[m.TeamID] = true
		}
	}
	r.s.mu.RUnlock()
	return r.filter(func(t model.Team) bool { return joined[t.ID] }), nil
}

func (r *teamRepo) AddMember(ctx context.Context, tx *sql.Tx, m *model.TeamMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.teams[m.TeamID]; !ok {
		return common.NotFound("Team not found")
	}
	if _, ok := r.s.users[m.UserID]; !ok {
		return common.NotFound("User not found")
	}
	for _, other := range r.s.members {
		if other.TeamID == m.TeamID && other.UserID == m.UserID {
			return common.Conflict("User is already a member of this team")
		}
	}
	m.JoinedAt = r.s.tick()
	r.s.members[m.ID] = *m
	return nil
}

func (r *teamRepo) RemoveMember(ctx context.Context, tx *sql.Tx, teamID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, m := range r.s.members {
		if m.TeamID == teamID && m.UserID == userID {
			delete(r.s.members, id)
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *teamRepo) GetMembers(ctx context.Context, teamID string) ([]model.MemberProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	members := []model.MemberProfile{}
	for _, m := range r.s.members {
		if m.TeamID != teamID {
			continue
		}
		u, ok := r.s.users[m.UserID]
		if !ok {
			continue
		}
		members = append(members, model.MemberProfile{User: u, IsLeader: m.IsLeader, Gender: m.Gender, JoinedAt: m.JoinedAt})
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].IsLeader != members[j].IsLeader {
			return members[i].IsLeader
		}
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})
	return members, nil
}

func (r *teamRepo) findMember(match func(model.TeamMember) bool) (*model.TeamMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var found *model.TeamMember
	for _, m := range r.s.members {
		if match(m) && (found == nil || m.JoinedAt.Before(found.JoinedAt)) {
			cp := m
			found = &cp
		}
	}
	if found == nil {
		return nil, common.ErrNotFound
	}
	return found, nil
}

func (r *teamRepo) GetMembership(ctx context.Context, teamID, userID string) (*model.TeamMember, error) {
	return r.findMember(func(m model.TeamMember) bool { return m.TeamID == teamID && m.UserID == userID })
}

func (r *teamRepo) FindLeader(ctx context.Context, teamID string) (*model.TeamMember, error) {
	return r.findMember(func(m model.TeamMember) bool { return m.TeamID == teamID && m.IsLeader })
}
