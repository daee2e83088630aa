package shell

import (
	"fmt"
)

type deleteUserCmd struct {
}

// delete_user $user_id --force
func (c *deleteUserCmd) Exec(shell *Shell, args []string) {

	userID := argID(args, 1)

	if len(args) != 3 || args[2] != "--force" {
		user, err := shell.model.Accounts.LoadUser(shell.ctx, userID)
		manageShellError(err)
		fmt.Fprintf(shell, "User %v (%v) and all of its events and relations will be removed\n", user.ID, user.Email)
		fmt.Fprintln(shell, "Try command:")
		fmt.Fprintf(shell, "\tdelete_user %d --force\n", userID)
		return
	}

	err := shell.model.Accounts.DeleteUser(shell.ctx, userID)
	manageShellError(err)

	fmt.Fprintln(shell, "User deleted")
}
