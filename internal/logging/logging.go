// Package logging builds the logger injected into every component.
package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/zorak1103/logsieve/internal/config"
)

// New builds a logrus logger from the log configuration. An unknown level
// falls back to info rather than failing: config validation happens before
// this, and the logger must exist to report anything at all.
func New(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log
}
