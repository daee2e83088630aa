package model

import (
	"errors"
)

var (
	ErrForbidden          = errors.New("operation not allowed for this user")
	ErrNotVisible         = errors.New("event not visible to user")
	ErrInvalidEvent       = errors.New("invalid event")
	ErrUserNotFound       = errors.New("user not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrSignupNotFound     = errors.New("signup not found")
	ErrRelationNotFound   = errors.New("relation not found")
	ErrAlreadySignedUp    = errors.New("user already signed up")
	ErrOwnerCannotLeave   = errors.New("event author cannot leave own event")
	ErrNotFriends         = errors.New("users are not friends")
	ErrEmptyEdit          = errors.New("nothing to edit")
	ErrModelInconsistency = errors.New("model has an inconsistency that requires admin to fix it")
)
