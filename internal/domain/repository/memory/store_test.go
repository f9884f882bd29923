package memory

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"quickhacker/internal/common"
	"quickhacker/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers_Uniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	users := store.Users()

	require.NoError(t, users.Create(ctx, nil, &model.User{ID: "u1", Username: "ada", Email: "Ada@Example.com"}))
	err := users.Create(ctx, nil, &model.User{ID: "u2", Username: "ada2", Email: "ada@example.com"})
	assert.ErrorIs(t, err, common.ErrConflict)

	found, err := users.FindByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.ID)

	_, err = users.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	boom := errors.New("boom")

	err := store.Transactor().WithinTx(ctx, func(tx *sql.Tx) error {
		require.NoError(t, store.Teams().Create(ctx, tx, &model.Team{ID: "t1", Name: "Alpha", Status: model.TeamPending}))
		require.NoError(t, store.Users().Create(ctx, tx, &model.User{ID: "u1", Username: "a", Email: "a@x.io"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.Counts()["teams"])
	assert.Equal(t, 0, store.Counts()["users"])

	err = store.Transactor().WithinTx(ctx, func(tx *sql.Tx) error {
		return store.Teams().Create(ctx, tx, &model.Team{ID: "t1", Name: "Alpha", Status: model.TeamPending})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Counts()["teams"])
}

func TestTeams_MembersOrderedLeaderFirst(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	teams := store.Teams()

	require.NoError(t, teams.Create(ctx, nil, &model.Team{ID: "t1", Name: "Alpha"}))
	for _, id := range []string{"u1", "u2", "u3"} {
		require.NoError(t, store.Users().Create(ctx, nil, &model.User{ID: id, Username: id, Email: id + "@x.io"}))
	}
	require.NoError(t, teams.AddMember(ctx, nil, &model.TeamMember{ID: "m1", TeamID: "t1", UserID: "u1"}))
	require.NoError(t, teams.AddMember(ctx, nil, &model.TeamMember{ID: "m2", TeamID: "t1", UserID: "u2", IsLeader: true}))
	require.NoError(t, teams.AddMember(ctx, nil, &model.TeamMember{ID: "m3", TeamID: "t1", UserID: "u3"}))

	err := teams.AddMember(ctx, nil, &model.TeamMember{ID: "m4", TeamID: "t1", UserID: "u1"})
	assert.ErrorIs(t, err, common.ErrConflict)

	members, err := teams.GetMembers(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, []string{"u2", "u1", "u3"}, []string{members[0].ID, members[1].ID, members[2].ID})

	leader, err := teams.FindLeader(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "u2", leader.UserID)

	mine, err := teams.ListByUserID(ctx, "u3")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	none, err := teams.ListByUserID(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, teams.RemoveMember(ctx, nil, "t1", "u3"))
	assert.ErrorIs(t, teams.RemoveMember(ctx, nil, "t1", "u3"), common.ErrNotFound)
}
