package shell

import (
	"fmt"
)

// create_user $name $email
type createUserCmd struct {
}

func (c *createUserCmd) Exec(shell *Shell, args []string) {

	if len(args) != 3 {
		manageShellError(ErrShellInvalidArgs)
	}

	user, err := shell.model.Accounts.CreateUser(shell.ctx, args[1], args[2])
	manageShellError(err)

	fmt.Fprintf(shell, "User %v created (%v)\n", user.ID, user.Email)
}
