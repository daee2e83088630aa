package api

import "time"

type Config interface {
	MaintenanceMode() bool
	ServerID() uint16
	DbDriver() DbDriver
	DbAddress() []string
	DbKeyspace() string
	DbCQLVersion() int
	SQLitePath() string
	SSHListenAddress() string
	SSHListenPort() int
	SSHHostKey() string
	SSHUser() string
	SSHPassword() string
	GcmAPIKey() string
	StatsCron() string
	NotifyWindow() time.Duration
	ViewFetchTimeout() time.Duration
	LogLevel() string
	LogFormat() string
}
