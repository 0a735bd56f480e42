package main

import (
	"fmt"
	"log/slog"
	"strings"
)

// logLevels are the log levels which can be set from the command line, in ascending order.
var logLevels = []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}

// logLevelFlag is a flag for setting the log level by name, e.g. -loglevel=debug.
type logLevelFlag struct {
	value slog.Level
}

func (l logLevelFlag) String() string {
	return l.value.String()
}

func (l *logLevelFlag) Set(value string) error {
	var names []string
	for _, v := range logLevels {
		if strings.EqualFold(value, v.String()) {
			l.value = v
			return nil
		}
		names = append(names, v.String())
	}
	return fmt.Errorf("unknown log level %q, valid levels are: %s", value, strings.Join(names, ", "))
}
