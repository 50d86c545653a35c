package logger

import (
	"github.com/sirupsen/logrus"

	"clipstream.com/config"
)

// Init configures the global logrus logger from config.
func Init() {
	level, err := logrus.ParseLevel(config.ConfigInfo.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if config.ConfigInfo.Log.Json {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
