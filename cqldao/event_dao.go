package cqldao

import (
	"context"
	"sort"

	"github.com/gocql/gocql"

	"github.com/Slm0nB/play-together-api-sub000/api"
	"github.com/Slm0nB/play-together-api-sub000/utils"
)

type EventDAO struct {
	session *GocqlSession
}

const eventColumns = `event_id, author_id, author_name, title, description, friends_only,
	game_id, start_date, end_date, created_date`

// Events are indexed by the year their end date falls in, so a range scan only
// touches the buckets that can still hold a match.
func timelineBucket(endDate int64) int {
	return utils.UnixMillisToTime(endDate).UTC().Year()
}

func (d *EventDAO) Load(ctx context.Context, ids ...int64) ([]*api.EventDTO, error) {

	checkSession(d.session)

	if len(ids) == 0 {
		return nil, nil
	}

	stmt := `SELECT ` + eventColumns + ` FROM events WHERE event_id IN ?`
	iter := d.session.Query(stmt, ids).WithContext(ctx).Iter()

	var events []*api.EventDTO
	index := make(map[int64]*api.EventDTO)
	e := &api.EventDTO{}
	for iter.Scan(&e.Id, &e.AuthorId, &e.AuthorName, &e.Title, &e.Description, &e.FriendsOnly,
		&e.GameId, &e.StartDate, &e.EndDate, &e.CreatedDate) {
		e.Signups = make(map[int64]*api.SignupDTO)
		events = append(events, e)
		index[e.Id] = e
		e = &api.EventDTO{}
	}

	if err := iter.Close(); err != nil {
		return nil, convErr(err)
	}

	if len(events) == 0 {
		return events, nil
	}

	if err := d.loadSignups(ctx, index); err != nil {
		return nil, err
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].StartDate != events[j].StartDate {
			return events[i].StartDate < events[j].StartDate
		}
		return events[i].Id < events[j].Id
	})

	return events, nil
}

func (d *EventDAO) loadSignups(ctx context.Context, index map[int64]*api.EventDTO) error {

	ids := make([]int64, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}

	stmt := `SELECT event_id, user_id, status, created_date FROM event_signups WHERE event_id IN ?`
	iter := d.session.Query(stmt, ids).WithContext(ctx).Iter()

	var status int
	s := &api.SignupDTO{}
	for iter.Scan(&s.EventId, &s.UserId, &status, &s.CreatedDate) {
		s.Status = api.SignupStatus(status)
		if e, ok := index[s.EventId]; ok {
			e.Signups[s.UserId] = s
		}
		s = &api.SignupDTO{}
	}

	return convErr(iter.Close())
}

// LoadInRange returns the events taking place at some point in [from, to].
func (d *EventDAO) LoadInRange(ctx context.Context, from int64, to int64) ([]*api.EventDTO, error) {

	checkSession(d.session)

	buckets, err := d.buckets(ctx)
	if err != nil {
		return nil, err
	}

	minBucket := 0
	if from != 0 {
		minBucket = timelineBucket(from)
	}

	var ids []int64
	for _, bucket := range buckets {
		if bucket < minBucket {
			continue
		}
		iter := d.session.Query(`SELECT event_id FROM events_timeline WHERE bucket = ? AND position >= ?`,
			bucket, from).WithContext(ctx).Iter()
		var id int64
		for iter.Scan(&id) {
			ids = append(ids, id)
		}
		if err := iter.Close(); err != nil {
			return nil, convErr(err)
		}
	}

	events, err := d.Load(ctx, ids...)
	if err != nil {
		return nil, err
	}

	if to == 0 {
		return events, nil
	}

	filtered := events[:0]
	for _, e := range events {
		if e.StartDate <= to {
			filtered = append(filtered, e)
		}
	}

	return filtered, nil
}

func (d *EventDAO) buckets(ctx context.Context) ([]int, error) {

	iter := d.session.Query(`SELECT DISTINCT bucket FROM events_timeline`).WithContext(ctx).Iter()

	var buckets []int
	var bucket int
	for iter.Scan(&bucket) {
		buckets = append(buckets, bucket)
	}

	if err := iter.Close(); err != nil {
		return nil, convErr(err)
	}

	sort.Ints(buckets)
	return buckets, nil
}

func (d *EventDAO) LoadByAuthor(ctx context.Context, authorID int64) ([]*api.EventDTO, error) {

	checkSession(d.session)

	iter := d.session.Query(`SELECT event_id FROM events_by_author WHERE author_id = ?`, authorID).
		WithContext(ctx).Iter()

	var ids []int64
	var id int64
	for iter.Scan(&id) {
		ids = append(ids, id)
	}

	if err := iter.Close(); err != nil {
		return nil, convErr(err)
	}

	return d.Load(ctx, ids...)
}

// Insert writes the event, its index rows and its signups in one logged batch.
func (d *EventDAO) Insert(ctx context.Context, event *api.EventDTO) error {

	checkSession(d.session)

	if event.Id == 0 || event.AuthorId == 0 {
		return api.ErrInvalidArg
	}

	batch := d.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)

	batch.Query(`INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.Id, event.AuthorId, event.AuthorName, event.Title, event.Description, event.FriendsOnly,
		event.GameId, event.StartDate, event.EndDate, event.CreatedDate)

	batch.Query(`INSERT INTO events_by_author (author_id, event_id) VALUES (?, ?)`, event.AuthorId, event.Id)

	batch.Query(`INSERT INTO events_timeline (bucket, position, event_id) VALUES (?, ?, ?)`,
		timelineBucket(event.EndDate), event.EndDate, event.Id)

	for _, s := range event.Signups {
		addSignupToBatch(batch, s)
	}

	return d.session.ExecuteBatch(batch)
}

// Update writes the event fields and moves its timeline entry if the end date
// changed. Signups are handled by SignupDAO.
func (d *EventDAO) Update(ctx context.Context, event *api.EventDTO) error {

	checkSession(d.session)

	var oldEnd int64
	err := d.session.Query(`SELECT end_date FROM events WHERE event_id = ?`, event.Id).
		WithContext(ctx).Scan(&oldEnd)
	if err != nil {
		return convErr(err)
	}

	batch := d.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)

	batch.Query(`UPDATE events SET title = ?, description = ?, friends_only = ?, game_id = ?,
		start_date = ?, end_date = ? WHERE event_id = ?`,
		event.Title, event.Description, event.FriendsOnly, event.GameId,
		event.StartDate, event.EndDate, event.Id)

	if oldEnd != event.EndDate {
		batch.Query(`DELETE FROM events_timeline WHERE bucket = ? AND position = ? AND event_id = ?`,
			timelineBucket(oldEnd), oldEnd, event.Id)
		batch.Query(`INSERT INTO events_timeline (bucket, position, event_id) VALUES (?, ?, ?)`,
			timelineBucket(event.EndDate), event.EndDate, event.Id)
	}

	return d.session.ExecuteBatch(batch)
}

// Delete removes the event together with its index rows and signups.
func (d *EventDAO) Delete(ctx context.Context, eventID int64) error {

	checkSession(d.session)

	events, err := d.Load(ctx, eventID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return api.ErrNotFound
	}
	event := events[0]

	batch := d.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)

	batch.Query(`DELETE FROM events WHERE event_id = ?`, event.Id)
	batch.Query(`DELETE FROM events_by_author WHERE author_id = ? AND event_id = ?`, event.AuthorId, event.Id)
	batch.Query(`DELETE FROM events_timeline WHERE bucket = ? AND position = ? AND event_id = ?`,
		timelineBucket(event.EndDate), event.EndDate, event.Id)
	batch.Query(`DELETE FROM event_signups WHERE event_id = ?`, event.Id)

	for userID := range event.Signups {
		batch.Query(`DELETE FROM signups_by_user WHERE user_id = ? AND event_id = ?`, userID, event.Id)
	}

	return d.session.ExecuteBatch(batch)
}
