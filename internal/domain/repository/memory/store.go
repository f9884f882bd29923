// Package memory is an in-process implementation of the repository interfaces.
// It enforces the same uniqueness rules as the Postgres schema.
package memory

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"quickhacker/internal/domain/model"
	"quickhacker/internal/domain/repository"
)

type Store struct {
	mu          sync.RWMutex
	txMu        sync.Mutex
	last        time.Time
	users       map[string]model.User
	teams       map[string]model.Team
	members     map[string]model.TeamMember
	problems    map[string]model.Problem
	submissions map[string]model.Submission
	reviews     map[string]model.Review
}

func NewStore() *Store {
	return &Store{
		users:       map[string]model.User{},
		teams:       map[string]model.Team{},
		members:     map[string]model.TeamMember{},
		problems:    map[string]model.Problem{},
		submissions: map[string]model.Submission{},
		reviews:     map[string]model.Review{},
	}
}

func (s *Store) Users() repository.UserRepository             { return &userRepo{s} }
func (s *Store) Teams() repository.TeamRepository             { return &teamRepo{s} }
func (s *Store) Problems() repository.ProblemRepository       { return &problemRepo{s} }
func (s *Store) Submissions() repository.SubmissionRepository { return &submissionRepo{s} }
func (s *Store) Reviews() repository.ReviewRepository         { return &reviewRepo{s} }
func (s *Store) Transactor() repository.Transactor            { return &transactor{s} }

// Counts reports the number of rows per table.
func (s *Store) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{
		"users":        len(s.users),
		"teams":        len(s.teams),
		"team_members": len(s.members),
		"problems":     len(s.problems),
		"submissions":  len(s.submissions),
		"reviews":      len(s.reviews),
	}
}

// tick returns a strictly increasing timestamp so ordering by time is deterministic.
// Callers hold s.mu.
func (s *Store) tick() time.Time {
	now := time.Now().UTC()
	if !now.After(s.last) {
		now = s.last.Add(time.Microsecond)
	}
	s.last = now
	return now
}

type snapshot struct {
	users       map[string]model.User
	teams       map[string]model.Team
	members     map[string]model.TeamMember
	problems    map[string]model.Problem
	submissions map[string]model.Submission
	reviews     map[string]model.Review
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		users:       copyMap(s.users),
		teams:       copyMap(s.teams),
		members:     copyMap(s.members),
		problems:    copyMap(s.problems),
		submissions: copyMap(s.submissions),
		reviews:     copyMap(s.reviews),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.teams = snap.teams
	s.members = snap.members
	s.problems = snap.problems
	s.submissions = snap.submissions
	s.reviews = snap.reviews
}

type transactor struct {
	s *Store
}

// WithinTx restores every table to its state before fn when fn fails or panics.
// Transactions run one at a time; writers outside a transaction are not isolated.
func (t *transactor) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()
	snap := t.s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			t.s.restore(snap)
			panic(p)
		}
		if err != nil {
			t.s.restore(snap)
		}
	}()
	return fn(nil)
}

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
