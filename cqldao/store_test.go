package cqldao

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Slm0nB/play-together-api-sub000/api"
)

func TestUserDAO(t *testing.T) {
	ctx := context.Background()
	users := testStore(t).Users()

	require.NoError(t, users.Insert(ctx, &api.UserDTO{Id: 1, Name: "Alice", Email: "alice@example.com", CreatedDate: 10}))
	assert.Equal(t, api.ErrAlreadyExists, users.Insert(ctx, &api.UserDTO{Id: 1, Name: "Alice", Email: "alice@example.com"}))

	require.NoError(t, users.SetPushToken(ctx, 1, "token-a"))
	alice, err := users.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "token-a", alice.PushToken)
	assert.Equal(t, api.ErrNotFound, users.SetPushToken(ctx, 99, "x"))

	require.NoError(t, users.Delete(ctx, 1))
	_, err = users.Load(ctx, 1)
	assert.Equal(t, api.ErrNotFound, err)
}

func TestEventDAO(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	events := store.Events()

	// 2024-03-01 .. 2024-03-02 and 2025-06-01 .. 2025-06-02
	e1 := &api.EventDTO{Id: 1, AuthorId: 10, Title: "raid", StartDate: 1709251200000, EndDate: 1709337600000,
		Signups: map[int64]*api.SignupDTO{10: {EventId: 1, UserId: 10, Status: api.SignupStatus_ACCEPTED}}}
	e2 := &api.EventDTO{Id: 2, AuthorId: 20, Title: "lan", StartDate: 1748736000000, EndDate: 1748822400000}

	require.NoError(t, events.Insert(ctx, e1))
	require.NoError(t, events.Insert(ctx, e2))

	found, err := events.LoadInRange(ctx, 1709300000000, 0)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Len(t, found[0].Signups, 1)

	found, err = events.LoadInRange(ctx, 1709400000000, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(2), found[0].Id)

	found, err = events.LoadInRange(ctx, 0, 1709300000000)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(1), found[0].Id)

	// moving the end date moves the timeline entry
	e1.StartDate, e1.EndDate = 1767225600000, 1767312000000
	require.NoError(t, events.Update(ctx, e1))
	found, err = events.LoadInRange(ctx, 1760000000000, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(1), found[0].Id)

	byAuthor, err := events.LoadByAuthor(ctx, 20)
	require.NoError(t, err)
	assert.Len(t, byAuthor, 1)

	require.NoError(t, events.Delete(ctx, 1))
	signups, err := store.Signups().LoadByUser(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, signups)
	assert.Equal(t, api.ErrNotFound, events.Delete(ctx, 1))
}

func TestSignupAndRelationDAO(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	s := &api.SignupDTO{EventId: 1, UserId: 20, Status: api.SignupStatus_TENTATIVE, CreatedDate: 5}
	require.NoError(t, store.Signups().Save(ctx, s))
	s.Status, s.CreatedDate = api.SignupStatus_ACCEPTED, 99
	require.NoError(t, store.Signups().Save(ctx, s))

	signups, err := store.Signups().LoadByUser(ctx, 20)
	require.NoError(t, err)
	require.Len(t, signups, 1)
	assert.Equal(t, api.SignupStatus_ACCEPTED, signups[0].Status)
	assert.Equal(t, int64(5), signups[0].CreatedDate)

	require.NoError(t, store.Signups().Delete(ctx, 1, 20))
	assert.Equal(t, api.ErrNotFound, store.Signups().Delete(ctx, 1, 20))

	relations := store.Relations()
	assert.Equal(t, api.ErrInvalidArg, relations.Save(ctx, &api.RelationDTO{UserA: 5, UserB: 2}))
	require.NoError(t, relations.Save(ctx, &api.RelationDTO{UserA: 1, UserB: 2, Status: 0x0001, CreatedDate: 1, UpdatedDate: 1}))
	require.NoError(t, relations.Save(ctx, &api.RelationDTO{UserA: 1, UserB: 2, Status: 0x0202, CreatedDate: 9, UpdatedDate: 2}))

	r, err := relations.Load(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0202), r.Status)
	assert.Equal(t, int64(1), r.CreatedDate)

	all, err := relations.LoadAll(ctx, 2)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(1), all[0].UserA)

	require.NoError(t, relations.Delete(ctx, 1, 2))
	assert.Equal(t, api.ErrNotFound, relations.Delete(ctx, 1, 2))
}
