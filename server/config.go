package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/Slm0nB/play-together-api-sub000/api"
	"github.com/Slm0nB/play-together-api-sub000/view"
)

type Config struct {
	data ConfigDTO
}

func (c *Config) MaintenanceMode() bool {
	return c.data.MaintenanceMode
}

func (c *Config) ServerID() uint16 {
	return c.data.ServerID
}

func (c *Config) DbDriver() api.DbDriver {
	return api.DbDriver(c.data.DbDriver)
}

func (c *Config) DbAddress() []string {
	return c.data.DbAddress
}

func (c *Config) DbKeyspace() string {
	return c.data.DbKeyspace
}

func (c *Config) DbCQLVersion() int {
	return c.data.DbCQLVersion
}

func (c *Config) SQLitePath() string {
	return c.data.SQLitePath
}

func (c *Config) SSHListenAddress() string {
	return c.data.SSHListenAddress
}

func (c *Config) SSHListenPort() int {
	return c.data.SSHListenPort
}

func (c *Config) SSHHostKey() string {
	return c.data.SSHHostKey
}

func (c *Config) SSHUser() string {
	return c.data.SSHUser
}

func (c *Config) SSHPassword() string {
	return c.data.SSHPassword
}

func (c *Config) GcmAPIKey() string {
	return c.data.GcmAPIKey
}

func (c *Config) StatsCron() string {
	return c.data.StatsCron
}

func (c *Config) NotifyWindow() time.Duration {
	return c.data.NotifyWindow
}

func (c *Config) ViewFetchTimeout() time.Duration {
	return c.data.ViewFetchTimeout
}

func (c *Config) LogLevel() string {
	return c.data.LogLevel
}

func (c *Config) LogFormat() string {
	return c.data.LogFormat
}

type ConfigDTO struct {
	MaintenanceMode  bool          `yaml:"maintenance_mode,omitempty"`
	ServerID         uint16        `yaml:"server_id,omitempty"`
	DbDriver         string        `yaml:"db_driver,omitempty"`
	DbAddress        []string      `yaml:"db_address,flow"`
	DbKeyspace       string        `yaml:"db_keyspace"`
	DbCQLVersion     int           `yaml:"db_cql_version,omitempty"`
	SQLitePath       string        `yaml:"sqlite_path,omitempty"`
	SSHListenAddress string        `yaml:"ssh_listen_address,omitempty"`
	SSHListenPort    int           `yaml:"ssh_listen_port,omitempty"`
	SSHHostKey       string        `yaml:"ssh_host_key,omitempty"`
	SSHUser          string        `yaml:"ssh_user,omitempty"`
	SSHPassword      string        `yaml:"ssh_password,omitempty"`
	GcmAPIKey        string        `yaml:"gcm_api_key,omitempty"`
	StatsCron        string        `yaml:"stats_cron,omitempty"`
	NotifyWindow     time.Duration `yaml:"notify_window,omitempty"`
	ViewFetchTimeout time.Duration `yaml:"view_fetch_timeout,omitempty"`
	LogLevel         string        `yaml:"log_level,omitempty"`
	LogFormat        string        `yaml:"log_format,omitempty"`
}

func loadConfigFromFile(file string) (*Config, error) {

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	return parseConfig(data)
}

func parseConfig(data []byte) (*Config, error) {

	config := &Config{}

	err := yaml.UnmarshalStrict(data, &config.data)
	if err != nil {
		return nil, err
	}

	// Set defaults if values are unset

	if config.data.ServerID == 0 {
		config.data.ServerID = 1
	}

	if config.data.DbDriver == "" {
		config.data.DbDriver = string(api.DriverSQLite)
	}

	if config.data.DbKeyspace == "" {
		config.data.DbKeyspace = "playtogether"
	}

	if config.data.DbCQLVersion == 0 {
		config.data.DbCQLVersion = 4
	}

	if config.data.SQLitePath == "" {
		config.data.SQLitePath = "playtogether.db"
	}

	if config.data.SSHListenAddress == "" {
		config.data.SSHListenAddress = "127.0.0.1"
	}

	if config.data.SSHListenPort == 0 {
		config.data.SSHListenPort = 2022
	}

	if config.data.NotifyWindow == 0 {
		config.data.NotifyWindow = 5 * time.Second
	}

	if config.data.ViewFetchTimeout == 0 {
		config.data.ViewFetchTimeout = view.DefaultFetchTimeout
	}

	if config.data.LogLevel == "" {
		config.data.LogLevel = "info"
	}

	if config.data.LogFormat == "" {
		config.data.LogFormat = "json"
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {

	switch c.DbDriver() {
	case api.DriverCassandra:
		if len(c.data.DbAddress) == 0 {
			return fmt.Errorf("db_address is required by the %s driver", api.DriverCassandra)
		}
	case api.DriverSQLite:
	default:
		return fmt.Errorf("unknown db_driver %q", c.data.DbDriver)
	}

	if c.data.LogFormat != "json" && c.data.LogFormat != "console" {
		return fmt.Errorf("unknown log_format %q", c.data.LogFormat)
	}

	return nil
}
