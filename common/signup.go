package common

import (
	"fmt"
	"strings"
	"time"
)

type SignupStatus int

const (
	SignupInvited SignupStatus = iota
	SignupTentative
	SignupAccepted
	SignupApproved
	SignupCancelled
)

var signupStatusNames = [...]string{"Invited", "Tentative", "Accepted", "Approved", "Cancelled"}

func (s SignupStatus) String() string {
	if s < 0 || int(s) >= len(signupStatusNames) {
		return fmt.Sprintf("SignupStatus(%d)", int(s))
	}
	return signupStatusNames[s]
}

func ParseSignupStatus(s string) (SignupStatus, bool) {
	for i, name := range signupStatusNames {
		if strings.EqualFold(name, s) {
			return SignupStatus(i), true
		}
	}
	return 0, false
}

type Signup struct {
	EventID     int64
	UserID      int64
	Status      SignupStatus
	CreatedDate time.Time
}

func NewSignup(eventID, userID int64, status SignupStatus, created time.Time) *Signup {
	return &Signup{
		EventID:     eventID,
		UserID:      userID,
		Status:      status,
		CreatedDate: created,
	}
}
