package cli

import (
	"fmt"
	"io"
	"strings"
)

const (
	ansiReset      = "\x1b[0;0m"
	ansiBlue       = "\x1b[34;22m"
	ansiYellow     = "\x1b[33;22m"
	ansiRed        = "\x1b[31;22m"
	ansiBlueBold   = "\x1b[34;1m"
	ansiYellowBold = "\x1b[33;1m"
	ansiRedBold    = "\x1b[31;1m"
)

// Exit codes
const (
	ErrSyntax  = 1
	ErrRuntime = 2
	ErrSystem  = 40
)

type logger struct {
	w     io.Writer
	color bool
	debug bool
}

func (l *logger) paint(bold, normal, label, msg string) {
	if !l.color {
		fmt.Fprintln(l.w, label+": "+msg)
		return
	}
	fmt.Fprintln(l.w, bold+label+": "+normal+msg+ansiReset)
}

func (l *logger) logDebugf(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.paint(ansiBlueBold, ansiBlue, "debug", fmt.Sprintf(format, args...))
}

func (l *logger) logWarnf(format string, args ...interface{}) {
	l.paint(ansiYellowBold, ansiYellow, "warn", fmt.Sprintf(format, args...))
}

// logErrf reports a failure and returns reason so callers can
// `return l.logErrf(ErrSystem, ...)`.
func (l *logger) logErrf(reason int, format string, args ...interface{}) int {
	label := "error"
	switch reason {
	case ErrSyntax:
		label = "syntax error"
	case ErrRuntime:
		label = "runtime error"
	case ErrSystem:
		label = "system error"
	}
	l.paint(ansiRedBold, ansiRed, label, fmt.Sprintf(format, args...))
	return reason
}

// logError writes an interpreter error. Its text already names the phase.
func (l *logger) logError(err error) {
	msg := strings.TrimRight(err.Error(), "\n")
	if !l.color {
		fmt.Fprintln(l.w, msg)
		return
	}
	fmt.Fprintln(l.w, ansiRed+msg+ansiReset)
}
