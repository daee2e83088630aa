package shell

import (
	"fmt"

	"github.com/Slm0nB/play-together-api-sub000/common"
)

// list_events [$viewer_id] [only=...] [include=...] [game=...] [author=...]
type listEventsCmd struct {
}

func (c *listEventsCmd) Exec(shell *Shell, args []string) {

	fc := parseFilter(args[1:])

	if fc.Authenticated() {
		friends, err := shell.model.Relations.GetFriends(shell.ctx, fc.ViewerID)
		manageShellError(err)
		for _, id := range friends {
			fc.AddFriend(id)
		}
	}

	events, err := shell.model.Events.LoadVisibleEvents(shell.ctx, fc)
	manageShellError(err)

	fmt.Fprintln(shell, rp("-", 104))
	fmt.Fprintf(shell, "| %-20s | %-20s | %-30s | %-16s | %1s |\n", "Id", "Author", "Title", "Start", "F")
	fmt.Fprintln(shell, rp("-", 104))
	for _, e := range events {
		writeEventRow(shell, e)
	}
	fmt.Fprintln(shell, rp("-", 104))

	fmt.Fprintln(shell, "Num. Events:", len(events))
}

func writeEventRow(shell *Shell, e *common.Event) {
	friendsOnly := " "
	if e.FriendsOnly {
		friendsOnly = "*"
	}
	fmt.Fprintf(shell, "| %-20v | %-20v | %-30v | %-16v | %1s |\n",
		ff(e.ID, 20), ff(e.AuthorName, 20), ff(e.Title, 30), ff(formatTime(e.StartDate), 16), friendsOnly)
}
