package memory

import (
	"context"
	"database/sql"

	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) conflicts(u *model.User) bool {
	for id, other := range r.s.users {
		if id == u.ID {
			continue
		}
		if other.Username == u.Username || equalFold(other.Email, u.Email) {
			return true
		}
		if u.AuthProviderID != nil && other.AuthProviderID != nil &&
			other.AuthProvider == u.AuthProvider && *other.AuthProviderID == *u.AuthProviderID {
			return true
		}
	}
	return false
}

func (r *userRepo) Create(ctx context.Context, tx *sql.Tx, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.users[u.ID]; exists || r.conflicts(u) {
		return common.Conflict("User with this username or email already exists")
	}
	now := r.s.tick()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = *u
	return nil
}

func (r *userRepo) Update(ctx context.Context, tx *sql.Tx, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return common.ErrNotFound
	}
	if r.conflicts(u) {
		return common.Conflict("User with this username or email already exists")
	}
	u.UpdatedAt = r.s.tick()
	r.s.users[u.ID] = *u
	return nil
}

func (r *userRepo) find(match func(model.User) bool) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.ID == id })
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.find(func(u model.User) bool { return equalFold(u.Email, email) })
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Username == username })
}

func (r *userRepo) FindByAuthProvider(ctx context.Context, provider, providerID string) (*model.User, error) {
	return r.find(func(u model.User) bool {
		return u.AuthProvider == provider && u.AuthProviderID != nil && *u.AuthProviderID == providerID
	})
}
