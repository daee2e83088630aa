package sqldao

import (
	"context"
	"database/sql"

	"github.com/Slm0nB/play-together-api-sub000/api"
)

type SignupDAO struct {
	db *sql.DB
}

const upsertSignupStmt = `INSERT INTO signups (event_id, user_id, status, created_date) VALUES (?, ?, ?, ?)
	ON CONFLICT (event_id, user_id) DO UPDATE SET status = excluded.status`

func scanSignup(row rowScanner) (*api.SignupDTO, error) {
	s := &api.SignupDTO{}
	if err := row.Scan(&s.EventId, &s.UserId, &s.Status, &s.CreatedDate); err != nil {
		return nil, convErr(err)
	}
	return s, nil
}

func (d *SignupDAO) Save(ctx context.Context, signup *api.SignupDTO) error {
	_, err := d.db.ExecContext(ctx, upsertSignupStmt, signup.EventId, signup.UserId, signup.Status, signup.CreatedDate)
	return err
}

func (d *SignupDAO) Delete(ctx context.Context, eventID int64, userID int64) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM signups WHERE event_id = ? AND user_id = ?`, eventID, userID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (d *SignupDAO) LoadByUser(ctx context.Context, userID int64) ([]*api.SignupDTO, error) {

	rows, err := d.db.QueryContext(ctx, `SELECT event_id, user_id, status, created_date
		FROM signups WHERE user_id = ? ORDER BY event_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signups []*api.SignupDTO
	for rows.Next() {
		s, err := scanSignup(rows)
		if err != nil {
			return nil, err
		}
		signups = append(signups, s)
	}

	return signups, rows.Err()
}
