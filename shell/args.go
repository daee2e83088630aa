package shell

import (
	"strconv"
	"time"
)

func argID(args []string, i int) int64 {
	if len(args) <= i {
		panic(ErrShellInvalidArgs)
	}
	id, err := strconv.ParseInt(args[i], 10, 64)
	manageShellError(err)
	return id
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}
