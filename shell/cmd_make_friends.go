package shell

import (
	"fmt"
)

// make_friends $user_id $user_id
type makeFriendsCmd struct {
}

func (c *makeFriendsCmd) Exec(shell *Shell, args []string) {

	user1 := argID(args, 1)
	user2 := argID(args, 2)

	r, err := shell.model.Relations.MakeFriends(shell.ctx, user1, user2)
	manageShellError(err)

	fmt.Fprintf(shell, "Users %v and %v are now friends %v\n", user1, user2, r.Status)
}
