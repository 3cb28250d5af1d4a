package diagnostics

import (
	"os"

	"github.com/mattn/go-isatty"

	"github.com/decisivestrike/uncommon-lisp/internal/config"
)

const (
	ansiReset   = "\x1b[0m"
	ansiRed     = "\x1b[31m"
	ansiRedBold = "\x1b[31;1m"
	ansiBlue    = "\x1b[94m"
	ansiYellow  = "\x1b[33m"
)

// ColorEnabled decides whether output written to f should carry ANSI
// escapes.
func ColorEnabled(f *os.File, mode string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if f == nil || os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Printer formats errors and values for a terminal.
type Printer struct {
	Color bool
}

func (p Printer) paint(code, s string) string {
	if !p.Color {
		return s
	}
	return code + s + ansiReset
}

// Error renders an error line, red when color is on.
func (p Printer) Error(err error) string {
	if !p.Color {
		return err.Error()
	}
	return ansiRedBold + "error: " + ansiReset + ansiRed + err.Error() + ansiReset
}

// Value renders an evaluation result.
func (p Printer) Value(s string) string {
	return p.paint(ansiBlue, s)
}

// Warn renders a warning line.
func (p Printer) Warn(s string) string {
	return p.paint(ansiYellow, s)
}
