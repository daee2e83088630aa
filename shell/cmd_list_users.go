package shell

import (
	"fmt"
)

// list_users
type listUsersCmd struct {
}

func (c *listUsersCmd) Exec(shell *Shell, args []string) {

	users, err := shell.model.Accounts.ListUsers(shell.ctx)
	manageShellError(err)

	fmt.Fprintln(shell, rp("-", 108))
	fmt.Fprintf(shell, "| P | %-20s | %-15s | %-40s | %-16s |\n", "Id", "Name", "Email", "Created")
	fmt.Fprintln(shell, rp("-", 108))

	for _, user := range users {
		pushInfo := " "
		if user.PushToken != "" {
			pushInfo = "*"
		}

		fmt.Fprintf(shell, "| %v | %-20v | %-15v | %-40v | %-16v |\n",
			pushInfo, ff(user.ID, 20), ff(user.Name, 15), ff(user.Email, 40), ff(formatTime(user.CreatedDate), 16))
	}
	fmt.Fprintln(shell, rp("-", 108))

	fmt.Fprintln(shell, "Num. Users:", len(users))
}
