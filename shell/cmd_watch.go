package shell

import (
	"fmt"

	"github.com/Slm0nB/play-together-api-sub000/view"
)

// watch [$viewer_id] [only=...] [include=...] [game=...] [author=...]
//
// Prints the changes of the live view until a new line is read.
type watchCmd struct {
}

func (c *watchCmd) Exec(shell *Shell, args []string) {

	fc := parseFilter(args[1:])

	handle, err := shell.model.SubscribeEvents(shell.ctx, fc, func(d *view.Delta) {
		for _, e := range d.Removed {
			fmt.Fprintf(shell, "- %v %q\n", e.ID, e.Title)
		}
		for _, e := range d.Added {
			fmt.Fprintf(shell, "+ %v %q %v\n", e.ID, e.Title, formatTime(e.StartDate))
		}
	})
	manageShellError(err)
	defer handle.Dispose()

	fmt.Fprintln(shell, "Watching, press enter to stop")

	_, err = shell.readLine()
	manageShellError(err)
}
