package cqldao

import (
	"context"

	"github.com/gocql/gocql"

	"github.com/Slm0nB/play-together-api-sub000/api"
)

type SignupDAO struct {
	session *GocqlSession
}

func addSignupToBatch(batch *gocql.Batch, s *api.SignupDTO) {
	batch.Query(`INSERT INTO event_signups (event_id, user_id, status, created_date) VALUES (?, ?, ?, ?)`,
		s.EventId, s.UserId, int(s.Status), s.CreatedDate)
	batch.Query(`INSERT INTO signups_by_user (user_id, event_id, status, created_date) VALUES (?, ?, ?, ?)`,
		s.UserId, s.EventId, int(s.Status), s.CreatedDate)
}

// Save upserts the signup. The creation date of an existing signup is kept.
func (d *SignupDAO) Save(ctx context.Context, signup *api.SignupDTO) error {

	checkSession(d.session)

	s := *signup
	var created int64
	err := d.session.Query(`SELECT created_date FROM event_signups WHERE event_id = ? AND user_id = ?`,
		s.EventId, s.UserId).WithContext(ctx).Scan(&created)
	switch {
	case err == nil:
		s.CreatedDate = created
	case err != gocql.ErrNotFound:
		return convErr(err)
	}

	batch := d.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	addSignupToBatch(batch, &s)
	return d.session.ExecuteBatch(batch)
}

func (d *SignupDAO) Delete(ctx context.Context, eventID int64, userID int64) error {

	checkSession(d.session)

	var found int64
	err := d.session.Query(`SELECT user_id FROM event_signups WHERE event_id = ? AND user_id = ?`,
		eventID, userID).WithContext(ctx).Scan(&found)
	if err != nil {
		return convErr(err)
	}

	batch := d.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`DELETE FROM event_signups WHERE event_id = ? AND user_id = ?`, eventID, userID)
	batch.Query(`DELETE FROM signups_by_user WHERE user_id = ? AND event_id = ?`, userID, eventID)
	return d.session.ExecuteBatch(batch)
}

func (d *SignupDAO) LoadByUser(ctx context.Context, userID int64) ([]*api.SignupDTO, error) {

	checkSession(d.session)

	stmt := `SELECT event_id, user_id, status, created_date FROM signups_by_user WHERE user_id = ?`
	iter := d.session.Query(stmt, userID).WithContext(ctx).Iter()

	var signups []*api.SignupDTO
	var status int
	s := &api.SignupDTO{}
	for iter.Scan(&s.EventId, &s.UserId, &status, &s.CreatedDate) {
		s.Status = api.SignupStatus(status)
		signups = append(signups, s)
		s = &api.SignupDTO{}
	}

	if err := iter.Close(); err != nil {
		return nil, convErr(err)
	}

	return signups, nil
}
