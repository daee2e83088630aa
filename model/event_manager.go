package model

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Slm0nB/play-together-api-sub000/api"
	"github.com/Slm0nB/play-together-api-sub000/common"
	"github.com/Slm0nB/play-together-api-sub000/filter"
	"github.com/Slm0nB/play-together-api-sub000/hub"
	"github.com/Slm0nB/play-together-api-sub000/utils"
)

type EventManager struct {
	parent    *Model
	userDAO   api.UserDAO
	eventDAO  api.EventDAO
	signupDAO api.SignupDAO
}

// EventDraft holds what a user provides to create an event.
type EventDraft struct {
	Title       string
	Description string
	FriendsOnly bool
	GameID      int64
	StartDate   time.Time
	EndDate     time.Time
}

// EventEdit lists the fields to change. Nil fields are left untouched.
type EventEdit struct {
	StartDate   *time.Time
	EndDate     *time.Time
	FriendsOnly *bool
	Title       *string
	Description *string
	GameID      *int64
}

func newEventManager(parent *Model) *EventManager {
	return &EventManager{
		parent:    parent,
		userDAO:   parent.store.Users(),
		eventDAO:  parent.store.Events(),
		signupDAO: parent.store.Signups(),
	}
}

// CreateEvent stores a new event with its author signed up as Accepted.
// Publishes EventChanged(Created) followed by the author's SignupChanged.
//
// Prominent Errors:
// - ErrUserNotFound
// - common.ErrInvalidEventData
// - common.ErrInvalidStartDate
// - common.ErrInvalidEndDate
func (m *EventManager) CreateEvent(ctx context.Context, authorID int64, draft *EventDraft) (*common.Event, error) {

	authorDTO, err := m.userDAO.Load(ctx, authorID)
	if err == api.ErrNotFound {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, err
	}

	now := m.parent.currentTime()

	event := &common.Event{
		ID:          m.parent.ids.NextID(),
		AuthorID:    authorID,
		AuthorName:  authorDTO.Name,
		Title:       draft.Title,
		Description: draft.Description,
		FriendsOnly: draft.FriendsOnly,
		GameID:      draft.GameID,
		StartDate:   draft.StartDate.UTC().Truncate(time.Millisecond),
		EndDate:     draft.EndDate.UTC().Truncate(time.Millisecond),
		CreatedDate: now,
		Signups:     make(map[int64]*common.Signup),
	}

	if err := event.IsValid(); err != nil {
		return nil, err
	}

	created := event.Clone()

	signup := common.NewSignup(event.ID, authorID, common.SignupAccepted, now)
	event.Signups[authorID] = signup

	if err := m.eventDAO.Insert(ctx, eventAsDTO(event)); err != nil {
		return nil, err
	}

	log.Info().Int64("event", event.ID).Int64("author", authorID).Bool("friends_only", event.FriendsOnly).
		Msg("event created")

	m.parent.hub.PublishEvent(&hub.EventChanged{
		Event:                 created,
		ChangingUser:          authorID,
		FriendsOfChangingUser: m.parent.Relations.friendsSnapshot(ctx, authorID),
		Action:                common.EventCreated,
	})

	s := *signup
	m.parent.hub.PublishSignup(&hub.SignupChanged{Signup: &s, Event: event.Clone()})

	return event, nil
}

// EditEvent applies edit to an event of userID. One EventChanged is published
// per edited aspect (period, visibility, text, game). Turning an event
// friends-only cancels the signups of users who are not friends of the
// author.
func (m *EventManager) EditEvent(ctx context.Context, userID int64, eventID int64, edit *EventEdit) (*common.Event, error) {

	event, err := m.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if event.AuthorID != userID {
		return nil, ErrForbidden
	}

	var actions []common.EventAction

	if edit.StartDate != nil || edit.EndDate != nil {
		if edit.StartDate != nil {
			event.StartDate = edit.StartDate.UTC().Truncate(time.Millisecond)
		}
		if edit.EndDate != nil {
			event.EndDate = edit.EndDate.UTC().Truncate(time.Millisecond)
		}
		actions = append(actions, common.EventEditedPeriod)
	}

	turnedPrivate := false
	if edit.FriendsOnly != nil && *edit.FriendsOnly != event.FriendsOnly {
		event.FriendsOnly = *edit.FriendsOnly
		turnedPrivate = event.FriendsOnly
		actions = append(actions, common.EventEditedVisibility)
	}

	if edit.Title != nil || edit.Description != nil {
		if edit.Title != nil {
			event.Title = *edit.Title
		}
		if edit.Description != nil {
			event.Description = *edit.Description
		}
		actions = append(actions, common.EventEditedText)
	}

	if edit.GameID != nil {
		event.GameID = *edit.GameID
		actions = append(actions, common.EventEditedGame)
	}

	if len(actions) == 0 {
		return nil, ErrEmptyEdit
	}

	// Start date limits count from now when editing
	check := *event
	check.CreatedDate = m.parent.currentTime()
	if err := check.IsValid(); err != nil {
		return nil, err
	}

	if err := m.eventDAO.Update(ctx, eventAsDTO(event)); err != nil {
		return nil, err
	}

	friends := m.parent.Relations.friendsSnapshot(ctx, userID)

	for _, action := range actions {
		log.Info().Int64("event", eventID).Stringer("action", action).Msg("event edited")
		m.parent.hub.PublishEvent(&hub.EventChanged{
			Event:                 event.Clone(),
			ChangingUser:          userID,
			FriendsOfChangingUser: friends,
			Action:                action,
		})
	}

	if turnedPrivate {
		isFriend := make(map[int64]bool, len(friends))
		for _, id := range friends {
			isFriend[id] = true
		}
		for _, uid := range event.SignupUserIDs() {
			if uid == event.AuthorID || isFriend[uid] {
				continue
			}
			if err := m.removeSignup(ctx, event, uid); err != nil {
				return nil, err
			}
		}
	}

	return event, nil
}

// DeleteEvent removes an event of userID with its signups and publishes
// EventChanged(Deleted).
func (m *EventManager) DeleteEvent(ctx context.Context, userID int64, eventID int64) error {

	event, err := m.loadEvent(ctx, eventID)
	if err != nil {
		return err
	}

	if event.AuthorID != userID {
		return ErrForbidden
	}

	if err := m.eventDAO.Delete(ctx, eventID); err != nil {
		return err
	}

	log.Info().Int64("event", eventID).Int64("author", userID).Msg("event deleted")

	m.parent.hub.PublishEvent(&hub.EventChanged{
		Event:                 event,
		ChangingUser:          userID,
		FriendsOfChangingUser: m.parent.Relations.friendsSnapshot(ctx, userID),
		Action:                common.EventDeleted,
	})

	return nil
}

// InviteUser signs userID up as Invited. Only the author can invite and,
// for friends-only events, only friends.
func (m *EventManager) InviteUser(ctx context.Context, authorID int64, eventID int64, userID int64) (*common.Signup, error) {

	event, err := m.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if event.AuthorID != authorID {
		return nil, ErrForbidden
	}

	if _, err := m.userDAO.Load(ctx, userID); err == api.ErrNotFound {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, err
	}

	if event.HasActiveSignup(userID) {
		return nil, ErrAlreadySignedUp
	}

	if visible, err := m.canSee(ctx, userID, event); err != nil {
		return nil, err
	} else if !visible {
		return nil, ErrNotVisible
	}

	return m.saveSignup(ctx, event, userID, common.SignupInvited)
}

// JoinEvent signs userID up as Accepted. A pending invitation is accepted.
func (m *EventManager) JoinEvent(ctx context.Context, userID int64, eventID int64) (*common.Signup, error) {

	event, err := m.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if s, ok := event.Signups[userID]; ok && s.Status != common.SignupInvited {
		return nil, ErrAlreadySignedUp
	}

	if visible, err := m.canSee(ctx, userID, event); err != nil {
		return nil, err
	} else if !visible {
		return nil, ErrNotVisible
	}

	return m.saveSignup(ctx, event, userID, common.SignupAccepted)
}

// ChangeSignupStatus changes the status userID has on an event. Cancelled
// leaves the event. Approved can only be given by the author, to others.
func (m *EventManager) ChangeSignupStatus(ctx context.Context, userID int64, eventID int64,
	status common.SignupStatus) (*common.Signup, error) {

	if status == common.SignupCancelled {
		return nil, m.LeaveEvent(ctx, userID, eventID)
	}

	if status == common.SignupApproved {
		return nil, ErrForbidden
	}

	event, err := m.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if !event.HasActiveSignup(userID) {
		return nil, ErrSignupNotFound
	}

	return m.saveSignup(ctx, event, userID, status)
}

// ApproveSignup lets the author approve the signup of userID.
func (m *EventManager) ApproveSignup(ctx context.Context, authorID int64, eventID int64, userID int64) (*common.Signup, error) {

	event, err := m.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if event.AuthorID != authorID || userID == authorID {
		return nil, ErrForbidden
	}

	if !event.HasActiveSignup(userID) {
		return nil, ErrSignupNotFound
	}

	return m.saveSignup(ctx, event, userID, common.SignupApproved)
}

// LeaveEvent removes the signup of userID and publishes it as Cancelled.
func (m *EventManager) LeaveEvent(ctx context.Context, userID int64, eventID int64) error {

	event, err := m.loadEvent(ctx, eventID)
	if err != nil {
		return err
	}

	if event.AuthorID == userID {
		return ErrOwnerCannotLeave
	}

	if !event.HasActiveSignup(userID) {
		return ErrSignupNotFound
	}

	return m.removeSignup(ctx, event, userID)
}

// LoadEvent returns the event if viewerID can see it.
func (m *EventManager) LoadEvent(ctx context.Context, viewerID int64, eventID int64) (*common.Event, error) {

	event, err := m.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if visible, err := m.canSee(ctx, viewerID, event); err != nil {
		return nil, err
	} else if !visible {
		return nil, ErrNotVisible
	}

	return event, nil
}

// LoadVisibleEvents runs the full query for fc. fc must carry the viewer's
// friends.
func (m *EventManager) LoadVisibleEvents(ctx context.Context, fc *filter.Context) ([]*common.Event, error) {

	list, err := m.eventDAO.LoadInRange(ctx, utils.TimeToMillis(fc.From), utils.TimeToMillis(fc.To))
	if err != nil {
		return nil, err
	}

	events := filter.Apply(newEventListFromDTO(list), fc)
	common.SortEvents(events)

	return events, nil
}

// LoadUserEvents returns the events userID created or is signed up to.
func (m *EventManager) LoadUserEvents(ctx context.Context, userID int64) ([]*common.Event, error) {

	created, err := m.eventDAO.LoadByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}

	signups, err := m.signupDAO.LoadByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(created))
	for _, dto := range created {
		seen[dto.Id] = true
	}

	var joined []int64
	for _, s := range signups {
		if !seen[s.EventId] && s.Status != api.SignupStatus_CANCELLED {
			joined = append(joined, s.EventId)
			seen[s.EventId] = true
		}
	}

	others, err := m.eventDAO.Load(ctx, joined...)
	if err != nil {
		return nil, err
	}

	events := newEventListFromDTO(append(created, others...))
	common.SortEvents(events)

	return events, nil
}

// FetchFriendEvents returns the events friendID created or joined that take
// place at some point in [from, to]. Views use it when a new friendship
// starts.
func (m *EventManager) FetchFriendEvents(ctx context.Context, friendID int64, from, to time.Time) ([]*common.Event, error) {

	events, err := m.LoadUserEvents(ctx, friendID)
	if err != nil {
		return nil, err
	}

	result := events[:0]
	for _, e := range events {
		if e.Overlaps(from, to) {
			result = append(result, e)
		}
	}

	return result, nil
}

func (m *EventManager) loadEvent(ctx context.Context, eventID int64) (*common.Event, error) {

	list, err := m.eventDAO.Load(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if len(list) == 0 {
		return nil, ErrEventNotFound
	}

	return newEventFromDTO(list[0]), nil
}

func (m *EventManager) canSee(ctx context.Context, userID int64, event *common.Event) (bool, error) {
	if !event.FriendsOnly || event.AuthorID == userID {
		return true, nil
	}
	if userID == 0 {
		return false, nil
	}
	return m.parent.Relations.AreFriends(ctx, userID, event.AuthorID)
}

// saveSignup stores the signup of userID with status on event, updates the
// event in place and publishes the change.
func (m *EventManager) saveSignup(ctx context.Context, event *common.Event, userID int64,
	status common.SignupStatus) (*common.Signup, error) {

	signup, ok := event.Signups[userID]
	if ok {
		signup.Status = status
	} else {
		signup = common.NewSignup(event.ID, userID, status, m.parent.currentTime())
		event.Signups[userID] = signup
	}

	if err := m.signupDAO.Save(ctx, signupAsDTO(signup)); err != nil {
		return nil, err
	}

	log.Info().Int64("event", event.ID).Int64("user", userID).Stringer("status", status).Msg("signup changed")

	s := *signup
	m.parent.hub.PublishSignup(&hub.SignupChanged{Signup: &s, Event: event.Clone()})

	return signup, nil
}

// removeSignup deletes the signup of userID, drops it from event and
// publishes it as Cancelled.
func (m *EventManager) removeSignup(ctx context.Context, event *common.Event, userID int64) error {

	signup, ok := event.Signups[userID]
	if !ok {
		return ErrSignupNotFound
	}

	if err := m.signupDAO.Delete(ctx, event.ID, userID); err != nil && err != api.ErrNotFound {
		return err
	}

	delete(event.Signups, userID)

	log.Info().Int64("event", event.ID).Int64("user", userID).Msg("signup cancelled")

	s := *signup
	s.Status = common.SignupCancelled
	m.parent.hub.PublishSignup(&hub.SignupChanged{Signup: &s, Event: event.Clone()})

	return nil
}
