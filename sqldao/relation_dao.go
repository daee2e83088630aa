package sqldao

import (
	"context"
	"database/sql"

	"github.com/Slm0nB/play-together-api-sub000/api"
)

type RelationDAO struct {
	db *sql.DB
}

func scanRelation(row rowScanner) (*api.RelationDTO, error) {
	r := &api.RelationDTO{}
	if err := row.Scan(&r.UserA, &r.UserB, &r.Status, &r.CreatedDate, &r.UpdatedDate); err != nil {
		return nil, convErr(err)
	}
	return r, nil
}

func (d *RelationDAO) Load(ctx context.Context, userA int64, userB int64) (*api.RelationDTO, error) {
	row := d.db.QueryRowContext(ctx, `SELECT user_a, user_b, status, created_date, updated_date
		FROM relations WHERE user_a = ? AND user_b = ?`, userA, userB)
	return scanRelation(row)
}

func (d *RelationDAO) LoadAll(ctx context.Context, userID int64) ([]*api.RelationDTO, error) {

	rows, err := d.db.QueryContext(ctx, `SELECT user_a, user_b, status, created_date, updated_date
		FROM relations WHERE user_a = ? OR user_b = ? ORDER BY user_a, user_b`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []*api.RelationDTO
	for rows.Next() {
		r, err := scanRelation(rows)
		if err != nil {
			return nil, err
		}
		relations = append(relations, r)
	}

	return relations, rows.Err()
}

func (d *RelationDAO) Save(ctx context.Context, relation *api.RelationDTO) error {

	if relation.UserA >= relation.UserB {
		return api.ErrInvalidArg
	}

	_, err := d.db.ExecContext(ctx, `INSERT INTO relations (user_a, user_b, status, created_date, updated_date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_a, user_b) DO UPDATE SET status = excluded.status, updated_date = excluded.updated_date`,
		relation.UserA, relation.UserB, relation.Status, relation.CreatedDate, relation.UpdatedDate)

	return err
}

func (d *RelationDAO) Delete(ctx context.Context, userA int64, userB int64) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM relations WHERE user_a = ? AND user_b = ?`, userA, userB)
	if err != nil {
		return err
	}
	return expectAffected(res)
}
