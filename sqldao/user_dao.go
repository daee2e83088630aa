package sqldao

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Slm0nB/play-together-api-sub000/api"
)

type UserDAO struct {
	db *sql.DB
}

const userColumns = `user_id, name, email, push_token, created_date`

func scanUser(row rowScanner) (*api.UserDTO, error) {
	user := &api.UserDTO{}
	err := row.Scan(&user.Id, &user.Name, &user.Email, &user.PushToken, &user.CreatedDate)
	if err != nil {
		return nil, convErr(err)
	}
	return user, nil
}

func (d *UserDAO) Load(ctx context.Context, userID int64) (*api.UserDTO, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = ?`, userID)
	return scanUser(row)
}

func (d *UserDAO) LoadAll(ctx context.Context) ([]*api.UserDTO, error) {

	rows, err := d.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*api.UserDTO
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func (d *UserDAO) Insert(ctx context.Context, user *api.UserDTO) error {

	if user.Id == 0 || user.Email == "" {
		return api.ErrInvalidArg
	}

	_, err := d.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?)`,
		user.Id, user.Name, user.Email, user.PushToken, user.CreatedDate)

	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		return api.ErrAlreadyExists
	}
	return err
}

func (d *UserDAO) SetPushToken(ctx context.Context, userID int64, token string) error {
	res, err := d.db.ExecContext(ctx, `UPDATE users SET push_token = ? WHERE user_id = ?`, token, userID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (d *UserDAO) Delete(ctx context.Context, userID int64) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return api.ErrNotFound
	}
	return nil
}
