package model

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/Slm0nB/play-together-api-sub000/api"
	"github.com/Slm0nB/play-together-api-sub000/hub"
	"github.com/Slm0nB/play-together-api-sub000/relation"
)

type RelationManager struct {
	parent      *Model
	userDAO     api.UserDAO
	relationDAO api.RelationDAO
	locks       *pairLocks
}

func newRelationManager(parent *Model) *RelationManager {
	return &RelationManager{
		parent:      parent,
		userDAO:     parent.store.Users(),
		relationDAO: parent.store.Relations(),
		locks:       newPairLocks(),
	}
}

// ChangeRelation applies action by acting on its relation with target,
// persists the result and publishes it. When the pair stops being mutual
// friends, the signups each one held on the other's friends-only events are
// cancelled.
//
// Prominent Errors:
// - relation.ErrSameUser
// - ErrUserNotFound
// - ErrRelationNotFound (Accept, Reject or Remove without a prior relation)
// - relation.ErrInvalidAction
func (m *RelationManager) ChangeRelation(ctx context.Context, acting int64, target int64,
	action relation.Action) (*relation.Relation, error) {

	if acting == target {
		return nil, relation.ErrSameUser
	}

	for _, userID := range []int64{acting, target} {
		if _, err := m.userDAO.Load(ctx, userID); err == api.ErrNotFound {
			return nil, ErrUserNotFound
		} else if err != nil {
			return nil, err
		}
	}

	unlock := m.locks.lock(acting, target)
	defer unlock()

	r, err := m.load(ctx, acting, target)
	if err == ErrRelationNotFound {
		if action != relation.Invite && action != relation.Block {
			return nil, err
		}
		if r, err = relation.New(acting, target); err != nil {
			return nil, err
		}
		r.CreatedDate = m.parent.currentTime()
	} else if err != nil {
		return nil, err
	}

	wasFriends := r.Status.MutualFriends()

	status, err := relation.ApplyAction(r, acting, action)
	if err != nil {
		return nil, err
	}

	r.Status = status
	r.UpdatedDate = m.parent.currentTime()

	if r.Status == (relation.Status{}) {
		err = m.relationDAO.Delete(ctx, r.UserA, r.UserB)
		if err == api.ErrNotFound {
			err = nil
		}
	} else {
		err = m.relationDAO.Save(ctx, relationAsDTO(r))
	}
	if err != nil {
		return nil, err
	}

	log.Info().Int64("acting", acting).Int64("target", target).Stringer("action", action).
		Stringer("status", r.Status).Msg("relation changed")

	snapshot := *r
	m.parent.hub.PublishRelation(&hub.RelationChanged{
		Relation:         &snapshot,
		ActiveUser:       acting,
		ActiveUserAction: action,
		TargetUser:       target,
	})

	if wasFriends && !r.Status.MutualFriends() {
		if err := m.cancelFriendSignups(ctx, acting, target); err != nil {
			return r, err
		}
		if err := m.cancelFriendSignups(ctx, target, acting); err != nil {
			return r, err
		}
	}

	return r, nil
}

// cancelFriendSignups removes the signups userID holds on friends-only
// events created by author.
func (m *RelationManager) cancelFriendSignups(ctx context.Context, userID int64, author int64) error {

	events, err := m.parent.Events.eventDAO.LoadByAuthor(ctx, author)
	if err != nil {
		return err
	}

	for _, dto := range events {
		event := newEventFromDTO(dto)
		if !event.FriendsOnly || !event.HasActiveSignup(userID) {
			continue
		}
		if err := m.parent.Events.removeSignup(ctx, event, userID); err != nil {
			return err
		}
	}

	return nil
}

func (m *RelationManager) load(ctx context.Context, user1 int64, user2 int64) (*relation.Relation, error) {

	a, b := relation.Normalize(user1, user2)

	dto, err := m.relationDAO.Load(ctx, a, b)
	if err == api.ErrNotFound {
		return nil, ErrRelationNotFound
	} else if err != nil {
		return nil, err
	}

	return newRelationFromDTO(dto)
}

// GetRelation returns the relation between both users. ErrRelationNotFound
// when they never interacted.
func (m *RelationManager) GetRelation(ctx context.Context, user1 int64, user2 int64) (*relation.Relation, error) {
	return m.load(ctx, user1, user2)
}

// GetRelationStatus returns the relation as seen by viewer.
func (m *RelationManager) GetRelationStatus(ctx context.Context, viewer int64, other int64) (relation.VisibleStatus, error) {

	if viewer == other {
		return relation.StatusNone, relation.ErrSameUser
	}

	r, err := m.load(ctx, viewer, other)
	if err == ErrRelationNotFound {
		return relation.StatusNone, nil
	} else if err != nil {
		return relation.StatusNone, err
	}

	return r.StatusFor(viewer)
}

func (m *RelationManager) ListRelations(ctx context.Context, userID int64) ([]*relation.Relation, error) {

	list, err := m.relationDAO.LoadAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	relations := make([]*relation.Relation, 0, len(list))
	for _, dto := range list {
		r, err := newRelationFromDTO(dto)
		if err != nil {
			log.Error().Err(err).Int64("user_a", dto.UserA).Int64("user_b", dto.UserB).
				Uint16("status", dto.Status).Msg("corrupt relation record")
			return nil, err
		}
		relations = append(relations, r)
	}

	return relations, nil
}

// GetFriends returns the ids of the mutual friends of userID, sorted.
func (m *RelationManager) GetFriends(ctx context.Context, userID int64) ([]int64, error) {

	relations, err := m.ListRelations(ctx, userID)
	if err != nil {
		return nil, err
	}

	friends := make([]int64, 0, len(relations))
	for _, r := range relations {
		if !r.Status.MutualFriends() {
			continue
		}
		other, err := r.Counterpart(userID)
		if err != nil {
			return nil, err
		}
		friends = append(friends, other)
	}

	sort.Slice(friends, func(i, j int) bool { return friends[i] < friends[j] })
	return friends, nil
}

// AreFriends reports whether both users are mutual friends.
func (m *RelationManager) AreFriends(ctx context.Context, user1 int64, user2 int64) (bool, error) {
	r, err := m.load(ctx, user1, user2)
	if err == ErrRelationNotFound {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return r.Status.MutualFriends(), nil
}

// MakeFriends sets both sides to Accepted regardless of the previous status.
// Meant for administration; clients go through ChangeRelation.
func (m *RelationManager) MakeFriends(ctx context.Context, user1 int64, user2 int64) (*relation.Relation, error) {

	r, err := m.ChangeRelation(ctx, user1, user2, relation.Invite)
	if err != nil {
		return nil, err
	}
	if r.Status.MutualFriends() {
		return r, nil
	}

	return m.ChangeRelation(ctx, user2, user1, relation.Accept)
}

// removeAll drops every relation of userID and publishes one
// RelationChanged per relation with the status cleared.
func (m *RelationManager) removeAll(ctx context.Context, userID int64) error {

	relations, err := m.ListRelations(ctx, userID)
	if err != nil {
		return err
	}

	for _, r := range relations {
		other, err := r.Counterpart(userID)
		if err != nil {
			return err
		}

		unlock := m.locks.lock(userID, other)
		err = m.relationDAO.Delete(ctx, r.UserA, r.UserB)
		if err != nil && err != api.ErrNotFound {
			unlock()
			return err
		}

		r.Status = relation.Status{}
		r.UpdatedDate = m.parent.currentTime()
		m.parent.hub.PublishRelation(&hub.RelationChanged{
			Relation:         r,
			ActiveUser:       userID,
			ActiveUserAction: relation.Remove,
			TargetUser:       other,
		})
		unlock()
	}

	return nil
}

// friendsSnapshot is GetFriends for notification payloads: failures are
// logged and yield an empty list.
func (m *RelationManager) friendsSnapshot(ctx context.Context, userID int64) []int64 {
	friends, err := m.GetFriends(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("user", userID).Msg("load friends for notification")
		return nil
	}
	return friends
}
