package cqldao

import (
	"context"

	"github.com/Slm0nB/play-together-api-sub000/api"
)

type UserDAO struct {
	session *GocqlSession
}

func (d *UserDAO) Load(ctx context.Context, userID int64) (*api.UserDTO, error) {

	checkSession(d.session)

	stmt := `SELECT user_id, name, email, push_token, created_date FROM users WHERE user_id = ?`

	user := &api.UserDTO{}
	err := d.session.Query(stmt, userID).WithContext(ctx).
		Scan(&user.Id, &user.Name, &user.Email, &user.PushToken, &user.CreatedDate)
	if err != nil {
		return nil, convErr(err)
	}

	return user, nil
}

func (d *UserDAO) LoadAll(ctx context.Context) ([]*api.UserDTO, error) {

	checkSession(d.session)

	stmt := `SELECT user_id, name, email, push_token, created_date FROM users`
	iter := d.session.Query(stmt).WithContext(ctx).Iter()

	var users []*api.UserDTO
	user := &api.UserDTO{}
	for iter.Scan(&user.Id, &user.Name, &user.Email, &user.PushToken, &user.CreatedDate) {
		users = append(users, user)
		user = &api.UserDTO{}
	}

	if err := iter.Close(); err != nil {
		return nil, convErr(err)
	}

	return users, nil
}

// Insert only writes when no user with the same id exists.
func (d *UserDAO) Insert(ctx context.Context, user *api.UserDTO) error {

	checkSession(d.session)

	if user.Id == 0 || user.Email == "" {
		return api.ErrInvalidArg
	}

	stmt := `INSERT INTO users (user_id, name, email, push_token, created_date)
		VALUES (?, ?, ?, ?, ?) IF NOT EXISTS`

	applied, err := d.session.Query(stmt, user.Id, user.Name, user.Email, user.PushToken, user.CreatedDate).
		WithContext(ctx).MapScanCAS(make(map[string]interface{}))
	if err != nil {
		return convErr(err)
	}
	if !applied {
		return api.ErrAlreadyExists
	}

	return nil
}

func (d *UserDAO) SetPushToken(ctx context.Context, userID int64, token string) error {

	checkSession(d.session)

	stmt := `UPDATE users SET push_token = ? WHERE user_id = ? IF EXISTS`

	applied, err := d.session.Query(stmt, token, userID).WithContext(ctx).MapScanCAS(make(map[string]interface{}))
	if err != nil {
		return convErr(err)
	}
	if !applied {
		return api.ErrNotFound
	}

	return nil
}

func (d *UserDAO) Delete(ctx context.Context, userID int64) error {

	checkSession(d.session)

	stmt := `DELETE FROM users WHERE user_id = ? IF EXISTS`

	applied, err := d.session.Query(stmt, userID).WithContext(ctx).MapScanCAS(make(map[string]interface{}))
	if err != nil {
		return convErr(err)
	}
	if !applied {
		return api.ErrNotFound
	}

	return nil
}
