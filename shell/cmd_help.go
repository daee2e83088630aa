package shell

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Slm0nB/play-together-api-sub000/filter"
)

type helpCmd struct {
}

// help [command]
func (c *helpCmd) Exec(shell *Shell, args []string) {

	if len(args) > 1 {
		if _, ok := shell.commands[args[1]]; !ok {
			fmt.Fprintf(shell, "Command %s does not exist\r\n", args[1])
			return
		}
		fmt.Fprintf(shell, "%v %v\n", args[1], usages[args[1]])
		if args[1] == "list_events" || args[1] == "watch" {
			fmt.Fprintln(shell, "Criteria:", strings.Join(criteriaNames(), ", "))
		}
		return
	}

	names := make([]string, 0, len(shell.commands))
	for name := range shell.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(shell, "- %-13v %v\n", name, usages[name])
	}
	fmt.Fprintln(shell, "- exit")
}

func criteriaNames() []string {
	var names []string
	for cr := filter.CreatedByMe; cr <= filter.JoinedByFriends; cr++ {
		names = append(names, cr.String())
	}
	return names
}
