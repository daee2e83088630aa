package cqldao

import (
	"context"

	"github.com/gocql/gocql"

	"github.com/Slm0nB/play-together-api-sub000/api"
)

// RelationDAO writes every pair twice, once under each user, so both sides
// can list their relations with a single partition read.
type RelationDAO struct {
	session *GocqlSession
}

const relationColumns = `user_a, user_b, status, created_date, updated_date`

func (d *RelationDAO) Load(ctx context.Context, userA int64, userB int64) (*api.RelationDTO, error) {

	checkSession(d.session)

	stmt := `SELECT ` + relationColumns + ` FROM relations_by_user WHERE user_id = ? AND other_id = ?`

	r := &api.RelationDTO{}
	var status int
	err := d.session.Query(stmt, userA, userB).WithContext(ctx).
		Scan(&r.UserA, &r.UserB, &status, &r.CreatedDate, &r.UpdatedDate)
	if err != nil {
		return nil, convErr(err)
	}
	r.Status = uint16(status)

	return r, nil
}

func (d *RelationDAO) LoadAll(ctx context.Context, userID int64) ([]*api.RelationDTO, error) {

	checkSession(d.session)

	stmt := `SELECT ` + relationColumns + ` FROM relations_by_user WHERE user_id = ?`
	iter := d.session.Query(stmt, userID).WithContext(ctx).Iter()

	var relations []*api.RelationDTO
	var status int
	r := &api.RelationDTO{}
	for iter.Scan(&r.UserA, &r.UserB, &status, &r.CreatedDate, &r.UpdatedDate) {
		r.Status = uint16(status)
		relations = append(relations, r)
		r = &api.RelationDTO{}
	}

	if err := iter.Close(); err != nil {
		return nil, convErr(err)
	}

	return relations, nil
}

func (d *RelationDAO) Save(ctx context.Context, relation *api.RelationDTO) error {

	checkSession(d.session)

	if relation.UserA >= relation.UserB {
		return api.ErrInvalidArg
	}

	r := *relation
	if old, err := d.Load(ctx, r.UserA, r.UserB); err == nil {
		r.CreatedDate = old.CreatedDate
	} else if err != api.ErrNotFound {
		return err
	}

	stmt := `INSERT INTO relations_by_user (user_id, other_id, ` + relationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

	batch := d.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(stmt, r.UserA, r.UserB, r.UserA, r.UserB, int(r.Status), r.CreatedDate, r.UpdatedDate)
	batch.Query(stmt, r.UserB, r.UserA, r.UserA, r.UserB, int(r.Status), r.CreatedDate, r.UpdatedDate)
	return d.session.ExecuteBatch(batch)
}

func (d *RelationDAO) Delete(ctx context.Context, userA int64, userB int64) error {

	checkSession(d.session)

	if _, err := d.Load(ctx, userA, userB); err != nil {
		return err
	}

	stmt := `DELETE FROM relations_by_user WHERE user_id = ? AND other_id = ?`

	batch := d.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(stmt, userA, userB)
	batch.Query(stmt, userB, userA)
	return d.session.ExecuteBatch(batch)
}
