package sqldao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Slm0nB/play-together-api-sub000/api"
	"github.com/Slm0nB/play-together-api-sub000/utils"
)

type EventDAO struct {
	db *sql.DB
}

const eventColumns = `event_id, author_id, author_name, title, description, friends_only,
	game_id, start_date, end_date, created_date`

func scanEvent(row rowScanner) (*api.EventDTO, error) {
	e := &api.EventDTO{Signups: make(map[int64]*api.SignupDTO)}
	var friendsOnly int
	err := row.Scan(&e.Id, &e.AuthorId, &e.AuthorName, &e.Title, &e.Description, &friendsOnly,
		&e.GameId, &e.StartDate, &e.EndDate, &e.CreatedDate)
	if err != nil {
		return nil, convErr(err)
	}
	e.FriendsOnly = friendsOnly != 0
	return e, nil
}

func (d *EventDAO) Load(ctx context.Context, ids ...int64) ([]*api.EventDTO, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	stmt := fmt.Sprintf(`SELECT %s FROM events WHERE event_id IN (%s) ORDER BY start_date, event_id`,
		eventColumns, utils.GenParams(len(ids)))
	return d.query(ctx, stmt, utils.GenValues(ids)...)
}

// LoadInRange returns the events taking place at some point in [from, to].
func (d *EventDAO) LoadInRange(ctx context.Context, from int64, to int64) ([]*api.EventDTO, error) {
	stmt := `SELECT ` + eventColumns + ` FROM events
		WHERE (? = 0 OR end_date >= ?) AND (? = 0 OR start_date <= ?)
		ORDER BY start_date, event_id`
	return d.query(ctx, stmt, from, from, to, to)
}

func (d *EventDAO) LoadByAuthor(ctx context.Context, authorID int64) ([]*api.EventDTO, error) {
	stmt := `SELECT ` + eventColumns + ` FROM events WHERE author_id = ? ORDER BY start_date, event_id`
	return d.query(ctx, stmt, authorID)
}

func (d *EventDAO) query(ctx context.Context, stmt string, args ...interface{}) ([]*api.EventDTO, error) {

	rows, err := d.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}

	var events []*api.EventDTO
	index := make(map[int64]*api.EventDTO)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		events = append(events, e)
		index[e.Id] = e
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(events) == 0 {
		return events, nil
	}

	if err := d.loadSignups(ctx, index); err != nil {
		return nil, err
	}

	return events, nil
}

func (d *EventDAO) loadSignups(ctx context.Context, index map[int64]*api.EventDTO) error {

	ids := make([]int64, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}

	stmt := fmt.Sprintf(`SELECT event_id, user_id, status, created_date FROM signups WHERE event_id IN (%s)`,
		utils.GenParams(len(ids)))

	rows, err := d.db.QueryContext(ctx, stmt, utils.GenValues(ids)...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSignup(rows)
		if err != nil {
			return err
		}
		if e, ok := index[s.EventId]; ok {
			e.Signups[s.UserId] = s
		}
	}

	return rows.Err()
}

// Insert stores the event and its signups in one transaction.
func (d *EventDAO) Insert(ctx context.Context, event *api.EventDTO) error {

	if event.Id == 0 || event.AuthorId == 0 {
		return api.ErrInvalidArg
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.Id, event.AuthorId, event.AuthorName, event.Title, event.Description, boolToInt(event.FriendsOnly),
		event.GameId, event.StartDate, event.EndDate, event.CreatedDate)
	if err != nil {
		return err
	}

	for _, s := range event.Signups {
		if _, err := tx.ExecContext(ctx, upsertSignupStmt, s.EventId, s.UserId, s.Status, s.CreatedDate); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Update writes the event fields. Signups are handled by SignupDAO.
func (d *EventDAO) Update(ctx context.Context, event *api.EventDTO) error {

	res, err := d.db.ExecContext(ctx, `UPDATE events SET title = ?, description = ?, friends_only = ?,
		game_id = ?, start_date = ?, end_date = ? WHERE event_id = ?`,
		event.Title, event.Description, boolToInt(event.FriendsOnly), event.GameId,
		event.StartDate, event.EndDate, event.Id)
	if err != nil {
		return err
	}

	return expectAffected(res)
}

func (d *EventDAO) Delete(ctx context.Context, eventID int64) error {

	res, err := d.db.ExecContext(ctx, `DELETE FROM events WHERE event_id = ?`, eventID)
	if err != nil {
		return err
	}

	return expectAffected(res)
}
