package cqldao

import (
	"errors"

	"github.com/gocql/gocql"

	"github.com/Slm0nB/play-together-api-sub000/api"
)

var (
	ErrNoSession        = errors.New("no session to Cassandra available")
	ErrInconsistency    = errors.New("db inconsistency detected")
	ErrIllegalArguments = errors.New("illegal arguments")
)

func convErr(err error) error {
	if err == gocql.ErrNotFound {
		return api.ErrNotFound
	}
	return err
}
