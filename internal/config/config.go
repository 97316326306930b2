package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Log      LogConfig      `mapstructure:"log" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
	Reminder ReminderConfig `mapstructure:"reminder" validate:"required"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Session  SessionConfig  `mapstructure:"session"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr" validate:"required"`
	TLSCert      string        `mapstructure:"tls_cert" validate:"required_with=TLSKey"`
	TLSKey       string        `mapstructure:"tls_key" validate:"required_with=TLSCert"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"min=0s"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"min=0s"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// StorageConfig selects and configures the task storage backend.
type StorageConfig struct {
	Type   string       `mapstructure:"type" validate:"required,oneof=file memory sqlite mongo"`
	File   FileConfig   `mapstructure:"file"`
	SQLite SQLiteConfig `mapstructure:"sqlite"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
}

type FileConfig struct {
	TasksPath string `mapstructure:"tasks_path" validate:"required"`
	// SentPath holds the sent-reminder journal; empty keeps it in memory.
	SentPath string `mapstructure:"sent_path"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri" validate:"required"`
	Database string `mapstructure:"database" validate:"required"`
}

// ReminderConfig controls the background scan loop.
type ReminderConfig struct {
	Interval time.Duration `mapstructure:"interval" validate:"min=1s"`
	Backoff  time.Duration `mapstructure:"backoff" validate:"min=0s"`
	// Timezone is attached to deadlines stored without an offset.
	Timezone string `mapstructure:"timezone" validate:"required"`
	// PersistSent journals sent reminders so restarts do not resend them.
	PersistSent bool `mapstructure:"persist_sent"`
}

// SMTPConfig holds the sender account. Missing credentials are not a
// configuration error: every send then fails and is retried later.
type SMTPConfig struct {
	Host     string        `mapstructure:"host" validate:"required"`
	Port     int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	Username string        `mapstructure:"username" validate:"omitempty,email"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"min=1s"`
}

// Configured reports whether sender credentials are present.
func (c SMTPConfig) Configured() bool {
	return c.Username != "" && c.Password != ""
}

type SessionConfig struct {
	// Owner preselects the active session owner at startup.
	Owner string `mapstructure:"owner"`
}
