package model

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Slm0nB/play-together-api-sub000/api"
	"github.com/Slm0nB/play-together-api-sub000/common"
	"github.com/Slm0nB/play-together-api-sub000/relation"
)

func TestCreateUser(t *testing.T) {

	ctx := context.Background()
	m := newTestModel(t)
	n := recordHub(t, m.Hub())

	var tests = []struct {
		name     string
		email    string
		expected error
	}{
		{"alice", "alice@example.com", nil},
		{"al", "al@example.com", common.ErrInvalidName},
		{"bobby", "not-an-email", common.ErrInvalidEmail},
		{"alice2", "alice@example.com", api.ErrAlreadyExists},
	}

	for i, test := range tests {
		_, err := m.Accounts.CreateUser(ctx, test.name, test.email)
		if err != test.expected {
			t.Fatalf("test %v: Expected '%v' but got '%v'", i, test.expected, err)
		}
	}

	require.Len(t, n.users, 1)
	assert.Equal(t, common.UserCreated, n.users[0].Action)

	users, err := m.Accounts.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSetPushToken(t *testing.T) {

	ctx := context.Background()
	m := newTestModel(t)
	user := createUsers(t, m, "alice")[0]

	require.NoError(t, m.Accounts.SetPushToken(ctx, user.ID, "token"))
	loaded, err := m.Accounts.LoadUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "token", loaded.PushToken)

	assert.Equal(t, ErrUserNotFound, m.Accounts.SetPushToken(ctx, 999, "token"))
}

// Deleting a user publishes one notification per removed relation and
// signup, one per deleted event and a final UserChanged.
func TestDeleteUser_Cascade(t *testing.T) {

	ctx := context.Background()
	m := newTestModel(t)
	users := createUsers(t, m, "usera", "alice", "bobby")
	u, a, b := users[0].ID, users[1].ID, users[2].ID

	_, err := m.Relations.MakeFriends(ctx, u, a)
	require.NoError(t, err)
	_, err = m.Relations.ChangeRelation(ctx, u, b, relation.Invite)
	require.NoError(t, err)

	// private with a friend signed up: deleted
	private, err := m.Events.CreateEvent(ctx, u, draft("private", true, time.Hour))
	require.NoError(t, err)
	_, err = m.Events.JoinEvent(ctx, a, private.ID)
	require.NoError(t, err)

	// public with another user signed up: kept
	public, err := m.Events.CreateEvent(ctx, u, draft("public", false, time.Hour))
	require.NoError(t, err)
	_, err = m.Events.JoinEvent(ctx, b, public.ID)
	require.NoError(t, err)

	// public with nobody else: deleted
	lonely, err := m.Events.CreateEvent(ctx, u, draft("lonely", false, time.Hour))
	require.NoError(t, err)

	// event of someone else that u joined
	other, err := m.Events.CreateEvent(ctx, a, draft("other", false, time.Hour))
	require.NoError(t, err)
	_, err = m.Events.JoinEvent(ctx, u, other.ID)
	require.NoError(t, err)

	n := recordHub(t, m.Hub())

	require.NoError(t, m.Accounts.DeleteUser(ctx, u))

	require.Len(t, n.users, 1)
	assert.Equal(t, common.UserDeleted, n.users[0].Action)
	assert.Equal(t, []int64{a}, n.users[0].FriendsOfUser)

	assert.Len(t, n.relations, 2)
	for _, r := range n.relations {
		assert.Equal(t, relation.Status{}, r.Relation.Status)
		assert.Equal(t, relation.Remove, r.ActiveUserAction)
	}

	// u on private, public, lonely and other, plus a on private
	assert.Len(t, n.signups, 5)
	assert.Len(t, n.cancelledSignups(), 5)

	var deleted []int64
	for _, e := range n.events {
		require.Equal(t, common.EventDeleted, e.Action)
		deleted = append(deleted, e.Event.ID)
	}
	assert.ElementsMatch(t, []int64{private.ID, lonely.ID}, deleted)

	kept, err := m.Events.LoadEvent(ctx, b, public.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b}, kept.SignupUserIDs())

	_, err = m.Accounts.LoadUser(ctx, u)
	assert.Equal(t, ErrUserNotFound, err)

	relations, err := m.Relations.ListRelations(ctx, a)
	require.NoError(t, err)
	assert.Empty(t, relations)

	assert.Equal(t, ErrUserNotFound, m.Accounts.DeleteUser(ctx, u))
}
