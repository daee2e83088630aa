package shell

import (
	"fmt"

	"github.com/Slm0nB/play-together-api-sub000/relation"
)

// relation $user_id $other_id [invite|accept|reject|block|remove]
type relationCmd struct {
}

func (c *relationCmd) Exec(shell *Shell, args []string) {

	acting := argID(args, 1)
	target := argID(args, 2)

	if len(args) > 3 {
		action, err := relation.ParseAction(args[3])
		manageShellError(err)
		_, err = shell.model.Relations.ChangeRelation(shell.ctx, acting, target, action)
		manageShellError(err)
	}

	mine, err := shell.model.Relations.GetRelationStatus(shell.ctx, acting, target)
	manageShellError(err)
	theirs, err := shell.model.Relations.GetRelationStatus(shell.ctx, target, acting)
	manageShellError(err)

	fmt.Fprintf(shell, "%v -> %v: %v\n", acting, target, mine)
	fmt.Fprintf(shell, "%v -> %v: %v\n", target, acting, theirs)
}
