// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Luxcomm Labs

package cmd

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// initLogging builds the daemon logger: console output on stderr, plus a
// rotating file when --log-file is set.
func initLogging() zerolog.Logger {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}}
	if logFile != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
		})
	}

	return zerolog.New(io.MultiWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()
}
