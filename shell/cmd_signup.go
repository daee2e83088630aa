package shell

import (
	"fmt"

	"github.com/Slm0nB/play-together-api-sub000/common"
)

// signup $user_id $event_id join|tentative|accepted|cancelled
type signupCmd struct {
}

func (c *signupCmd) Exec(shell *Shell, args []string) {

	userID := argID(args, 1)
	eventID := argID(args, 2)

	if len(args) != 4 {
		manageShellError(ErrShellInvalidArgs)
	}

	var signup *common.Signup
	var err error

	if args[3] == "join" {
		signup, err = shell.model.Events.JoinEvent(shell.ctx, userID, eventID)
	} else {
		status, ok := common.ParseSignupStatus(args[3])
		if !ok {
			manageShellError(ErrShellInvalidArgs)
		}
		signup, err = shell.model.Events.ChangeSignupStatus(shell.ctx, userID, eventID, status)
	}
	manageShellError(err)

	if signup == nil {
		fmt.Fprintf(shell, "User %v left event %v\n", userID, eventID)
		return
	}
	fmt.Fprintf(shell, "User %v is %v on event %v\n", userID, signup.Status, eventID)
}
