// Package logging provides a thin bracket-tagged logger matching the
// teacher's `[tag] message` convention (see discover.go, server-public.go,
// main.go), with color applied only when stderr is an attached terminal.
package logging

import (
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-isatty"
)

var colorEnabled = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

const (
	colorCyan  = "\x1b[36m"
	colorReset = "\x1b[0m"
)

// Logger prefixes every line with a fixed bracket tag, e.g. "[proxy]".
type Logger struct {
	tag string
}

// New returns a Logger for the given tag, without surrounding brackets.
func New(tag string) *Logger {
	return &Logger{tag: tag}
}

func (l *Logger) prefix() string {
	if colorEnabled {
		return colorCyan + "[" + l.tag + "]" + colorReset + " "
	}
	return "[" + l.tag + "] "
}

// Printf logs a formatted informational line.
func (l *Logger) Printf(format string, args ...any) {
	log.Print(l.prefix() + fmt.Sprintf(format, args...))
}

// Fatalf logs a formatted line and terminates the process, matching the
// teacher's fatal-on-startup-error convention.
func (l *Logger) Fatalf(format string, args ...any) {
	log.Fatal(l.prefix() + fmt.Sprintf(format, args...))
}
