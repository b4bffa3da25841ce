package helpers

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates the process logger. Development gets readable text at
// debug level, everything else JSON at info. A valid level overrides either.
func NewLogger(appName, env, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level != "" {
		if lvl, err := logrus.ParseLevel(level); err == nil {
			logger.SetLevel(lvl)
		} else {
			logger.WithError(err).Warn("ignoring LOG_LEVEL")
		}
	}
	logger.WithFields(logrus.Fields{"app": appName, "env": env, "level": logger.GetLevel().String()}).Info("logger initialized")
	return logger
}

// NewDiscardLogger returns a logger that drops everything; handy in tests.
func NewDiscardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
