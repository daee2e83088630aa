package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Slm0nB/play-together-api-sub000/common"
	"github.com/Slm0nB/play-together-api-sub000/filter"
	"github.com/Slm0nB/play-together-api-sub000/hub"
	"github.com/Slm0nB/play-together-api-sub000/model"
	"github.com/Slm0nB/play-together-api-sub000/sqldao"
	"github.com/Slm0nB/play-together-api-sub000/stats"
)

type fakeTerm struct {
	in  io.Reader
	mu  sync.Mutex
	out bytes.Buffer
}

func (f *fakeTerm) Read(p []byte) (int, error) {
	return f.in.Read(p)
}

func (f *fakeTerm) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.out.Write(p)
}

func (f *fakeTerm) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.out.String()
}

func setup(t *testing.T) (*model.Model, *stats.Refresher, []*common.User) {
	t.Helper()
	ctx := context.Background()

	store, err := sqldao.OpenMemory(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m := model.New(store, hub.New())
	st, err := stats.New(m, "")
	require.NoError(t, err)
	t.Cleanup(st.Close)

	var users []*common.User
	for _, name := range []string{"alice", "bobby"} {
		u, err := m.Accounts.CreateUser(ctx, name, name+"@example.com")
		require.NoError(t, err)
		users = append(users, u)
	}
	return m, st, users
}

func runScript(m *model.Model, st *stats.Refresher, lines ...string) string {
	term := &fakeTerm{in: strings.NewReader(strings.Join(lines, "\n") + "\n")}
	NewShell(context.Background(), m, st, term).Run()
	return term.String()
}

func TestCommands(t *testing.T) {

	m, st, users := setup(t)
	alice, bobby := users[0].ID, users[1].ID

	var tests = []struct {
		line     string
		expected string
	}{
		{"help", "- make_friends  $user_id $user_id\n"},
		{"help watch", "Criteria: CreatedByMe, JoinedByMe, CreatedByFriends, JoinedByFriends"},
		{"help fly", "Command fly does not exist"},
		{"list_users", "Num. Users: 2"},
		{fmt.Sprintf("show_user %d", alice), "Email: alice@example.com"},
		{fmt.Sprintf("show_user %d", alice), "There aren't relations"},
		{fmt.Sprintf("relation %d %d invite", alice, bobby), fmt.Sprintf("%d -> %d: Invited", bobby, alice)},
		{fmt.Sprintf("relation %d %d accept", bobby, alice), fmt.Sprintf("%d -> %d: Friends", alice, bobby)},
		{fmt.Sprintf("relation %d %d poke", bobby, alice), "Error: invalid relation action"},
		{fmt.Sprintf("stats %d", alice), "Friends: 1"},
		{"create_user carol carol@example.com", "created (carol@example.com)"},
		{"create_user carol", "Error: invalid args"},
		{"create_user dave not-an-email", "Error: invalid e-mail"},
		{"list_users", "Num. Users: 3"},
		{"list_events", "Num. Events: 0"},
		{"list_events only=Nobody", "Error: invalid criterion"},
		{fmt.Sprintf("list_events %d only=CreatedByMe", alice), "Num. Events: 0"},
		{fmt.Sprintf("delete_user %d", bobby), fmt.Sprintf("delete_user %d --force", bobby)},
		{fmt.Sprintf("delete_user %d --force", bobby), "User deleted"},
		{fmt.Sprintf("show_user %d", bobby), "Error: user not found"},
		{"show_user", "Error: invalid args"},
		{"dance", "Command dance does not exist"},
	}

	for i, test := range tests {
		output := runScript(m, st, test.line, "exit")
		if !strings.Contains(output, test.expected) {
			t.Fatalf("test %v: Expected '%v' in output but got '%v'", i, test.expected, output)
		}
	}
}

func TestRunEndsOnEOF(t *testing.T) {
	m, st, _ := setup(t)
	output := runScript(m, st, "help")
	assert.True(t, strings.HasSuffix(output, "Good bye\n"))
}

func TestMakeFriends(t *testing.T) {
	m, st, users := setup(t)

	output := runScript(m, st, fmt.Sprintf("make_friends %d %d", users[0].ID, users[1].ID))
	assert.Contains(t, output, "are now friends")

	friends, err := m.Relations.AreFriends(context.Background(), users[0].ID, users[1].ID)
	require.NoError(t, err)
	assert.True(t, friends)
}

func TestWatch(t *testing.T) {

	ctx := context.Background()
	m, st, users := setup(t)
	alice := users[0].ID

	reader, writer := io.Pipe()
	term := &fakeTerm{in: reader}
	done := make(chan struct{})

	go func() {
		NewShell(ctx, m, st, term).Run()
		close(done)
	}()

	_, err := fmt.Fprintf(writer, "watch %d\n", alice)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return strings.Contains(term.String(), "Watching")
	}, time.Second, 5*time.Millisecond)

	start := time.Now().Add(time.Hour)
	event, err := m.Events.CreateEvent(ctx, alice, &model.EventDraft{
		Title:     "raid",
		StartDate: start,
		EndDate:   start.Add(time.Hour),
	})
	require.NoError(t, err)

	expected := fmt.Sprintf("+ %d \"raid\"", event.ID)
	require.Eventually(t, func() bool {
		return strings.Contains(term.String(), expected)
	}, time.Second, 5*time.Millisecond)

	_, err = fmt.Fprint(writer, "\nexit\n")
	require.NoError(t, err)
	writer.Close()
	<-done

	assert.Equal(t, 0, m.Views().Live())
}

func TestParseFilter(t *testing.T) {

	var tests = []struct {
		args     []string
		expected *filter.Context
	}{
		{nil, &filter.Context{}},
		{[]string{"7"}, &filter.Context{ViewerID: 7}},
		{[]string{"7", "only=CreatedByMe,joinedbyme"},
			&filter.Context{ViewerID: 7, Only: []filter.Criterion{filter.CreatedByMe, filter.JoinedByMe}}},
		{[]string{"7", "include=JoinedByFriends", "game=3,4"},
			&filter.Context{ViewerID: 7, Include: []filter.Criterion{filter.JoinedByFriends}, GameIDs: []int64{3, 4}}},
		{[]string{"author=9"}, &filter.Context{AuthorIDs: []int64{9}}},
	}

	for i, test := range tests {
		fc := parseFilter(test.args)
		if !assert.Equal(t, test.expected, fc) {
			t.Fatalf("test %v failed", i)
		}
	}

	invalid := [][]string{
		{"7", "8"},
		{"x"},
		{"only=Nobody"},
		{"only=CreatedByMe", "include=CreatedByMe"},
		{"colour=red"},
	}
	for _, args := range invalid {
		assert.Panics(t, func() { parseFilter(args) }, "args %v", args)
	}
}

func TestLoadConfig(t *testing.T) {

	_, err := loadConfig(SSHConfig{User: "admin"})
	assert.Equal(t, ErrNoCredentials, err)

	config, err := loadConfig(SSHConfig{User: "admin", Password: "secret"})
	require.NoError(t, err)
	assert.NotNil(t, config.PasswordCallback)

	_, err = loadConfig(SSHConfig{User: "admin", Password: "secret", HostKey: "/nonexistent/host_key"})
	assert.Error(t, err)
}

func TestSignupCommand(t *testing.T) {

	ctx := context.Background()
	m, st, users := setup(t)
	alice, bobby := users[0].ID, users[1].ID

	start := time.Now().Add(time.Hour)
	event, err := m.Events.CreateEvent(ctx, alice, &model.EventDraft{
		Title:     "raid",
		StartDate: start,
		EndDate:   start.Add(time.Hour),
	})
	require.NoError(t, err)

	var tests = []struct {
		status   string
		expected string
	}{
		{"tentative", "Error: signup not found"},
		{"join", "is Accepted on event"},
		{"tentative", "is Tentative on event"},
		{"maybe", "Error: invalid args"},
		{"cancelled", "left event"},
	}

	for i, test := range tests {
		output := runScript(m, st, fmt.Sprintf("signup %d %d %s", bobby, event.ID, test.status))
		if !strings.Contains(output, test.expected) {
			t.Fatalf("test %v: Expected '%v' in output but got '%v'", i, test.expected, output)
		}
	}

	output := runScript(m, st, fmt.Sprintf("list_events %d", bobby))
	assert.Contains(t, output, "Num. Events: 1")
}
