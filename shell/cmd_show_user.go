package shell

import (
	"fmt"
)

// show_user $user_id
type showUserCmd struct {
}

func (c *showUserCmd) Exec(shell *Shell, args []string) {

	userID := argID(args, 1)

	user, err := shell.model.Accounts.LoadUser(shell.ctx, userID)
	manageShellError(err)

	fmt.Fprintln(shell, "---------------------------------")
	fmt.Fprintln(shell, "User details")
	fmt.Fprintln(shell, "---------------------------------")
	fmt.Fprintln(shell, "UserID:", user.ID)
	fmt.Fprintln(shell, "Name:", user.Name)
	fmt.Fprintln(shell, "Email:", user.Email)
	fmt.Fprintln(shell, "Created at:", formatTime(user.CreatedDate))
	fmt.Fprintln(shell, "Push token:", user.PushToken != "")

	fmt.Fprintln(shell, "---------------------------------")
	fmt.Fprintln(shell, "Relations")
	fmt.Fprintln(shell, "---------------------------------")

	relations, err := shell.model.Relations.ListRelations(shell.ctx, userID)
	if err != nil {
		fmt.Fprintln(shell, "Error:", err)
	}
	for _, r := range relations {
		other, _ := r.Counterpart(userID)
		status, _ := r.StatusFor(userID)
		fmt.Fprintf(shell, "- %v %v\n", other, status)
	}
	if len(relations) == 0 {
		fmt.Fprintln(shell, "There aren't relations")
	}

	fmt.Fprintln(shell, "---------------------------------")
	fmt.Fprintln(shell, "Events")
	fmt.Fprintln(shell, "---------------------------------")

	events, err := shell.model.Events.LoadUserEvents(shell.ctx, userID)
	if err != nil {
		fmt.Fprintln(shell, "Error:", err)
	}
	for _, e := range events {
		role := "joined"
		if e.AuthorID == userID {
			role = "created"
		} else if s, ok := e.Signups[userID]; ok {
			role = s.Status.String()
		}
		fmt.Fprintf(shell, "- %v %v %q (%v)\n", e.ID, formatTime(e.StartDate), e.Title, role)
	}
	fmt.Fprintln(shell, "---------------------------------")
}
