package main

import (
	"github.com/natefinch/lumberjack"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/writer"
)

const (
	LOG_MAX_SIZE_MB = 50
	LOG_MAX_BACKUPS = 5
	LOG_MAX_AGE     = 30 // days
)

var logFile *lumberjack.Logger

// setupLogging configures the console format and level. When logLocation is
// set, every entry is also appended to that file, rotated by size.
func setupLogging(logDebug bool, logLocation string) {

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:  true,
		DisableSorting: true,
	})

	if logDebug {
		log.SetLevel(log.DebugLevel)
	}

	if logLocation == "" {
		return
	}

	logFile = &lumberjack.Logger{
		Filename:   logLocation,
		MaxSize:    LOG_MAX_SIZE_MB,
		MaxBackups: LOG_MAX_BACKUPS,
		MaxAge:     LOG_MAX_AGE,
	}

	// Write everything to log file too
	log.AddHook(&writer.Hook{
		Writer: logFile,
		LogLevels: []log.Level{
			log.PanicLevel,
			log.FatalLevel,
			log.ErrorLevel,
			log.WarnLevel,
			log.InfoLevel,
			log.DebugLevel,
		},
	})
}

func closeLogging() {

	if logFile == nil {
		return
	}

	log.StandardLogger().ReplaceHooks(make(log.LevelHooks))

	if err := logFile.Close(); err != nil {
		log.WithError(err).Error("Unable to close log file")
	}
	logFile = nil
}
