package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// Config represents the logger configuration.
type Config struct {
	// Director is the directory for rotated log files. Empty disables file output.
	Director string `mapstructure:"director" json:"director" yaml:"director" default:"logs"`

	// Level is the minimum log level (debug, info, warn, error, dpanic, panic, fatal).
	Level string `mapstructure:"level" json:"level" yaml:"level" default:"info"`

	// Format is the log format (json or console).
	Format string `mapstructure:"format" json:"format" yaml:"format" default:"json" validate:"oneof=json console"`

	// Prefix is prepended to every timestamp.
	Prefix     string `mapstructure:"prefix" json:"prefix" yaml:"prefix"`
	TimeFormat string `mapstructure:"time-format" json:"timeFormat" yaml:"time-format" default:"2006/01/02 - 15:04:05"`

	// LogInTerminal also writes to stdout.
	LogInTerminal bool `mapstructure:"log-in-terminal" json:"logInTerminal" yaml:"log-in-terminal" default:"true"`

	MaxAge     int  `mapstructure:"max-age" json:"maxAge" yaml:"max-age" default:"7"`
	MaxSize    int  `mapstructure:"max-size" json:"maxSize" yaml:"max-size" default:"100"`
	MaxBackups int  `mapstructure:"max-backups" json:"maxBackups" yaml:"max-backups" default:"10"`
	Compress   bool `mapstructure:"compress" json:"compress" yaml:"compress" default:"true"`

	// ShowLineNumber enables adding caller information to log entries.
	ShowLineNumber bool `mapstructure:"show-line-number" json:"showLineNumber" yaml:"show-line-number" default:"true"`
}

// DefaultConfig returns the configuration used by the global logger.
func DefaultConfig() Config {
	return Config{
		Director:       "logs",
		Level:          "info",
		Format:         "json",
		TimeFormat:     "2006/01/02 - 15:04:05",
		LogInTerminal:  true,
		MaxAge:         7,
		MaxSize:        100,
		MaxBackups:     10,
		Compress:       true,
		ShowLineNumber: true,
	}
}

// TransportLevel converts the string level to zapcore.Level.
func (c Config) TransportLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(strings.ToLower(c.Level))
	if err != nil {
		return zapcore.DebugLevel
	}
	return level
}

func (c *Config) applyDefaults() {
	if c.TimeFormat == "" {
		c.TimeFormat = DefaultConfig().TimeFormat
	}
	if c.Format == "" {
		c.Format = "json"
	}
}
