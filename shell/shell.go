// Package shell is the administration console. It is served over SSH and
// works straight on the model, so every change made here is published to
// live views like any other.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Slm0nB/play-together-api-sub000/model"
	"github.com/Slm0nB/play-together-api-sub000/stats"
)

type Command interface {
	Exec(shell *Shell, args []string)
}

type Shell struct {
	ctx      context.Context
	rw       io.ReadWriter
	in       *bufio.Reader
	wmu      sync.Mutex
	welcome  string
	prompt   string
	commands map[string]Command
	model    *model.Model
	stats    *stats.Refresher
}

func NewShell(ctx context.Context, m *model.Model, st *stats.Refresher, rw io.ReadWriter) *Shell {
	shell := &Shell{
		ctx:     ctx,
		rw:      rw,
		in:      bufio.NewReader(rw),
		welcome: "Welcome to play-together server shell\n",
		prompt:  "playtogether$>",
		model:   m,
		stats:   st,
	}
	shell.init()
	return shell
}

func (s *Shell) init() {
	s.commands = map[string]Command{
		"help":         &helpCmd{},
		"list_users":   &listUsersCmd{},
		"show_user":    &showUserCmd{},
		"create_user":  &createUserCmd{},
		"delete_user":  &deleteUserCmd{},
		"relation":     &relationCmd{},
		"make_friends": &makeFriendsCmd{},
		"list_events":  &listEventsCmd{},
		"signup":       &signupCmd{},
		"stats":        &statsCmd{},
		"watch":        &watchCmd{},
	}
}

var usages = map[string]string{
	"help":         "[command]",
	"show_user":    "$user_id",
	"create_user":  "$name $email",
	"delete_user":  "$user_id [--force]",
	"relation":     "$user_id $other_id [invite|accept|reject|block|remove]",
	"make_friends": "$user_id $user_id",
	"list_events":  "[$viewer_id] [only=...] [include=...] [game=...] [author=...]",
	"signup":       "$user_id $event_id join|tentative|accepted|cancelled",
	"stats":        "$user_id",
	"watch":        "[$viewer_id] [only=...] [include=...] [game=...] [author=...]",
}

// Write is safe to call from subscription callbacks while a command runs.
func (s *Shell) Write(p []byte) (int, error) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.rw.Write(p)
}

// Run reads commands until exit or the connection is closed.
func (s *Shell) Run() {

	fmt.Fprintf(s, "\n%s\n\n", s.welcome)
	exit := false

	for !exit {
		exit = s.executeShell()
	}

	fmt.Fprintln(s, "Good bye")
	log.Info().Msg("shell session terminated")
}

func (s *Shell) executeShell() (exit bool) {

	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			if err == io.EOF || s.ctx.Err() != nil {
				exit = true
			} else {
				exit = false
				fmt.Fprintf(s, "Error: %v\r\n", err)
			}
			log.Debug().Err(err).Msg("shell error")
		}
	}()

	for {
		fmt.Fprint(s, s.prompt+" ")

		line, err := s.readLine()
		manageShellError(err)
		if line == "" {
			continue
		}
		args := strings.Fields(line)

		if args[0] == "exit" {
			return true
		}

		if command, ok := s.commands[args[0]]; ok {
			command.Exec(s, args)
		} else {
			fmt.Fprintf(s, "Command %s does not exist\r\n", args[0])
		}
	}
}

func (s *Shell) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func manageShellError(err error) {
	if err != nil {
		panic(err)
	}
}

func ff(text interface{}, length int) string {
	s := fmt.Sprintf("%v", text)
	if len(s) > length {
		s = s[:length]
	}
	return s
}

func rp(str string, length int) string {
	return strings.Repeat(str, length)
}
