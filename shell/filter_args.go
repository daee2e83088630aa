package shell

import (
	"strconv"
	"strings"

	"github.com/Slm0nB/play-together-api-sub000/filter"
)

// parseFilter reads "[viewer_id] [only=a,b] [include=c] [game=id]" from args.
func parseFilter(args []string) *filter.Context {

	fc := &filter.Context{}

	for i, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			if i != 0 {
				panic(ErrShellInvalidArgs)
			}
			fc.ViewerID = argID(args, 0)
			continue
		}

		for _, item := range strings.Split(value, ",") {
			switch key {
			case "only", "include":
				cr, err := filter.ParseCriterion(item)
				manageShellError(err)
				if key == "only" {
					fc.Only = append(fc.Only, cr)
				} else {
					fc.Include = append(fc.Include, cr)
				}
			case "game", "author":
				id, err := strconv.ParseInt(item, 10, 64)
				manageShellError(err)
				if key == "game" {
					fc.GameIDs = append(fc.GameIDs, id)
				} else {
					fc.AuthorIDs = append(fc.AuthorIDs, id)
				}
			default:
				panic(ErrShellInvalidArgs)
			}
		}
	}

	manageShellError(fc.Validate())

	return fc
}
