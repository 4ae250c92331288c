// Package logger configures the process-wide structured logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Fields aliases logrus.Fields for callers.
type Fields = logrus.Fields

// Config controls log level, format, and destination.
type Config struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // json or text
	File   string `yaml:"file" json:"file"`     // empty means stdout
	MaxAge int    `yaml:"max_age_days" json:"max_age_days"`
}

// New builds a logrus logger from the config. When File is set, output
// goes through a size/age-capped rolling file.
func New(cfg Config) (*logrus.Logger, error) {
	log := logrus.New()

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(parsed)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		maxAge := cfg.MaxAge
		if maxAge <= 0 {
			maxAge = 7
		}
		out = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     maxAge,
			Compress:   true,
		}
	}
	log.SetOutput(out)

	return log, nil
}
