package model

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Slm0nB/play-together-api-sub000/api"
	"github.com/Slm0nB/play-together-api-sub000/common"
	"github.com/Slm0nB/play-together-api-sub000/hub"
)

type AccountManager struct {
	parent  *Model
	userDAO api.UserDAO
}

func newAccountManager(parent *Model) *AccountManager {
	return &AccountManager{
		parent:  parent,
		userDAO: parent.store.Users(),
	}
}

// Prominent Errors:
// - common.ErrInvalidName
// - common.ErrInvalidEmail
// - api.ErrAlreadyExists
func (m *AccountManager) CreateUser(ctx context.Context, name string, email string) (*common.User, error) {

	user := &common.User{
		ID:          m.parent.ids.NextID(),
		Name:        name,
		Email:       email,
		CreatedDate: m.parent.currentTime(),
	}

	if err := user.IsValid(); err != nil {
		return nil, err
	}

	if err := m.userDAO.Insert(ctx, userAsDTO(user)); err != nil {
		return nil, err
	}

	log.Info().Int64("user", user.ID).Str("email", user.Email).Msg("user created")

	u := *user
	m.parent.hub.PublishUser(&hub.UserChanged{User: &u, Action: common.UserCreated})

	return user, nil
}

func (m *AccountManager) SetPushToken(ctx context.Context, userID int64, token string) error {

	user, err := m.LoadUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := m.userDAO.SetPushToken(ctx, userID, token); err == api.ErrNotFound {
		return ErrUserNotFound
	} else if err != nil {
		return err
	}

	user.PushToken = token
	m.parent.hub.PublishUser(&hub.UserChanged{
		User:          user,
		FriendsOfUser: m.parent.Relations.friendsSnapshot(ctx, userID),
		Action:        common.UserEdited,
	})

	return nil
}

func (m *AccountManager) LoadUser(ctx context.Context, userID int64) (*common.User, error) {

	dto, err := m.userDAO.Load(ctx, userID)
	if err == api.ErrNotFound {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, err
	}

	return newUserFromDTO(dto), nil
}

func (m *AccountManager) ListUsers(ctx context.Context) ([]*common.User, error) {

	list, err := m.userDAO.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]*common.User, 0, len(list))
	for _, dto := range list {
		users = append(users, newUserFromDTO(dto))
	}

	return users, nil
}

// DeleteUser removes a user and everything hanging from it:
//
//   - every signup the user holds, one SignupChanged each;
//   - the user's events, except public ones other users are still signed up
//     to. Signups of other users on deleted events are removed first, one
//     SignupChanged each, then one EventChanged(Deleted) per event;
//   - every relation, one RelationChanged each;
//   - the account, with a final UserChanged(Deleted).
func (m *AccountManager) DeleteUser(ctx context.Context, userID int64) error {

	user, err := m.LoadUser(ctx, userID)
	if err != nil {
		return err
	}

	friends := m.parent.Relations.friendsSnapshot(ctx, userID)
	events := m.parent.Events

	joined, err := events.LoadUserEvents(ctx, userID)
	if err != nil {
		return err
	}

	var owned []*common.Event

	for _, event := range joined {
		if event.AuthorID == userID {
			owned = append(owned, event)
			continue
		}
		if err := events.removeSignup(ctx, event, userID); err != nil {
			return err
		}
	}

	deleted := 0
	for _, event := range owned {

		if !event.FriendsOnly && event.HasNonOwnerSignup() {
			if _, ok := event.Signups[userID]; ok {
				if err := events.removeSignup(ctx, event, userID); err != nil {
					return err
				}
			}
			log.Info().Int64("event", event.ID).Int64("author", userID).Msg("event kept after author deletion")
			continue
		}

		for _, uid := range event.SignupUserIDs() {
			if uid == userID {
				continue
			}
			if err := events.removeSignup(ctx, event, uid); err != nil {
				return err
			}
		}
		if _, ok := event.Signups[userID]; ok {
			if err := events.removeSignup(ctx, event, userID); err != nil {
				return err
			}
		}

		if err := events.eventDAO.Delete(ctx, event.ID); err != nil && err != api.ErrNotFound {
			return err
		}
		deleted++

		m.parent.hub.PublishEvent(&hub.EventChanged{
			Event:                 event.Clone(),
			ChangingUser:          userID,
			FriendsOfChangingUser: friends,
			Action:                common.EventDeleted,
		})
	}

	if err := m.parent.Relations.removeAll(ctx, userID); err != nil {
		return err
	}

	if err := m.userDAO.Delete(ctx, userID); err != nil && err != api.ErrNotFound {
		return err
	}

	log.Info().Int64("user", userID).Int("events_deleted", deleted).Int("events_kept", len(owned)-deleted).
		Msg("user deleted")

	m.parent.hub.PublishUser(&hub.UserChanged{
		User:          user,
		FriendsOfUser: friends,
		Action:        common.UserDeleted,
	})

	return nil
}
