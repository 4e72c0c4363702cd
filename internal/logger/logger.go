package logger

import (
	"github.com/sirupsen/logrus"
)

// Log is the shared structured logger. It carries a usable default so tests
// and early startup paths never hit a nil logger.
var Log = logrus.New()

// Init configures the logger level. JSON output by default (production).
func Init(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter switches to human-readable output (development).
func SetTextFormatter() {
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}
