package shell

import "errors"

var (
	ErrShellInvalidArgs = errors.New("invalid args")
	ErrNoStatistics     = errors.New("statistics are not enabled")
	ErrNoCredentials    = errors.New("ssh user and password are required")
)
