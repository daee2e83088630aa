package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Slm0nB/play-together-api-sub000/api"
	"github.com/Slm0nB/play-together-api-sub000/view"
)

func TestParseConfigDefaults(t *testing.T) {

	config, err := parseConfig([]byte("ssh_user: admin\nssh_password: secret\n"))
	require.NoError(t, err)

	assert.Equal(t, uint16(1), config.ServerID())
	assert.Equal(t, api.DriverSQLite, config.DbDriver())
	assert.Equal(t, "playtogether", config.DbKeyspace())
	assert.Equal(t, 4, config.DbCQLVersion())
	assert.Equal(t, "playtogether.db", config.SQLitePath())
	assert.Equal(t, "127.0.0.1", config.SSHListenAddress())
	assert.Equal(t, 2022, config.SSHListenPort())
	assert.Equal(t, 5*time.Second, config.NotifyWindow())
	assert.Equal(t, view.DefaultFetchTimeout, config.ViewFetchTimeout())
	assert.Equal(t, "info", config.LogLevel())
	assert.Equal(t, "json", config.LogFormat())
	assert.Equal(t, "", config.StatsCron())
	assert.False(t, config.MaintenanceMode())
}

func TestParseConfig(t *testing.T) {

	data := `
maintenance_mode: true
server_id: 3
db_driver: cassandra
db_address: [10.0.0.1, 10.0.0.2]
db_keyspace: games
ssh_listen_port: 2200
stats_cron: "*/5 * * * *"
notify_window: 30s
view_fetch_timeout: 2s
log_format: console
`
	config, err := parseConfig([]byte(data))
	require.NoError(t, err)

	assert.True(t, config.MaintenanceMode())
	assert.Equal(t, uint16(3), config.ServerID())
	assert.Equal(t, api.DriverCassandra, config.DbDriver())
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, config.DbAddress())
	assert.Equal(t, "games", config.DbKeyspace())
	assert.Equal(t, 2200, config.SSHListenPort())
	assert.Equal(t, "*/5 * * * *", config.StatsCron())
	assert.Equal(t, 30*time.Second, config.NotifyWindow())
	assert.Equal(t, 2*time.Second, config.ViewFetchTimeout())
	assert.Equal(t, "console", config.LogFormat())
}

func TestParseConfigErrors(t *testing.T) {

	var tests = []string{
		"db_driver: mysql\n",
		"db_driver: cassandra\n",
		"log_format: xml\n",
		"unknown_key: 1\n",
		"ssh_listen_port: [1]\n",
	}

	for i, data := range tests {
		if _, err := parseConfig([]byte(data)); err == nil {
			t.Fatalf("test %v: Expected an error for '%v'", i, data)
		}
	}
}

func TestNewServer(t *testing.T) {

	ctx := context.Background()
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")

	data := "sqlite_path: " + filepath.Join(dir, "test.db") + "\nssh_user: admin\nssh_password: secret\n"
	require.NoError(t, os.WriteFile(file, []byte(data), 0600))

	config, err := loadConfigFromFile(file)
	require.NoError(t, err)

	store, err := openStore(ctx, config)
	require.NoError(t, err)

	server, err := NewServer(config, store)
	require.NoError(t, err)
	defer server.Close()

	user, err := server.Model().Accounts.CreateUser(ctx, "alice", "alice@example.com")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	// a cancelled context stops every component right away
	runCtx, cancel := context.WithCancel(ctx)
	cancel()
	done := make(chan error, 1)
	go func() { done <- server.Run(runCtx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNewServerNeedsCredentials(t *testing.T) {

	path := filepath.Join(t.TempDir(), "test.db")
	config, err := parseConfig([]byte("sqlite_path: " + path + "\n"))
	require.NoError(t, err)

	store, err := openStore(context.Background(), config)
	require.NoError(t, err)
	defer store.Close()

	_, err = NewServer(config, store)
	assert.Error(t, err)
}
