package shell

import (
	"fmt"
)

// stats $user_id
type statsCmd struct {
}

func (c *statsCmd) Exec(shell *Shell, args []string) {

	userID := argID(args, 1)

	if shell.stats == nil {
		manageShellError(ErrNoStatistics)
	}

	st, err := shell.stats.Compute(shell.ctx, userID)
	manageShellError(err)

	fmt.Fprintln(shell, "Created events:", st.CreatedEvents)
	fmt.Fprintln(shell, "Joined events:", st.JoinedEvents)
	fmt.Fprintln(shell, "Upcoming events:", st.UpcomingEvents)
	fmt.Fprintln(shell, "Friends:", st.Friends)
	fmt.Fprintln(shell, "Pending invites:", st.PendingInvites)
}
