package utils

import (
	"fmt"
	"log"
	"os"
	"time"
)

// Logger provides leveled logging throughout the application. Every line
// carries the run identifier so interleaved runs can be told apart.
type Logger struct {
	info    *log.Logger
	warn    *log.Logger
	err     *log.Logger
	debug   *log.Logger
	runID   string
	verbose bool
}

// NewLogger creates a new Logger writing to stdout/stderr. Debug lines are
// suppressed unless verbose is set.
func NewLogger(runID string, verbose bool) *Logger {
	flags := 0
	return &Logger{
		info:    log.New(os.Stdout, "", flags),
		warn:    log.New(os.Stdout, "", flags),
		err:     log.New(os.Stderr, "", flags),
		debug:   log.New(os.Stdout, "", flags),
		runID:   runID,
		verbose: verbose,
	}
}

func (l *Logger) prefix() string {
	ts := time.Now().Format("2006-01-02 15:04:05")
	if l.runID == "" {
		return "[" + ts + "]"
	}
	return "[" + ts + "] [" + l.runID + "]"
}

func (l *Logger) Info(format string, args ...any) {
	l.info.Printf(fmt.Sprintf("%s \033[32mINFO\033[0m  %s\n", l.prefix(), format), args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.warn.Printf(fmt.Sprintf("%s \033[33mWARN\033[0m  %s\n", l.prefix(), format), args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.err.Printf(fmt.Sprintf("%s \033[31mERROR\033[0m %s\n", l.prefix(), format), args...)
}

func (l *Logger) Debug(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.debug.Printf(fmt.Sprintf("%s \033[36mDEBUG\033[0m %s\n", l.prefix(), format), args...)
}
