package api

import (
	"errors"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrNoResults     = errors.New("no results found")
	ErrInvalidArg    = errors.New("invalid arguments")
	ErrInvalidEmail  = errors.New("invalid e-mail")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnexpected    = errors.New("unexpected error")
	ErrUnknownDriver = errors.New("unknown database driver")
	ErrCorruptRecord = errors.New("corrupt record")
)
