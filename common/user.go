package common

import (
	"errors"
	"regexp"
	"time"
)

var (
	ErrInvalidName  = errors.New("invalid name")
	ErrInvalidEmail = errors.New("invalid e-mail")

	validEmail = regexp.MustCompile(`^\w[-._\w]*\w@\w[-._\w]*\w\.\w{2,}$`)
)

type UserAction int

const (
	UserCreated UserAction = iota
	UserDeleted
	UserEdited
)

func (a UserAction) String() string {
	switch a {
	case UserCreated:
		return "Created"
	case UserDeleted:
		return "Deleted"
	case UserEdited:
		return "Edited"
	}
	return "Unknown"
}

type User struct {
	ID          int64
	Name        string
	Email       string
	PushToken   string
	CreatedDate time.Time
}

func (u *User) IsValid() error {
	if u.ID == 0 || len(u.Name) < 3 || len(u.Name) > 50 {
		return ErrInvalidName
	}
	if !IsValidEmail(u.Email) {
		return ErrInvalidEmail
	}
	return nil
}

func IsValidEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	return validEmail.MatchString(email)
}
