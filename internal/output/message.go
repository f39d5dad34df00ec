package output

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
)

// Info prints an informational message to stdout with an info prefix.
func Info(msg string) {
	InfoTo(os.Stdout, msg)
}

// Infof prints a formatted informational message to stdout.
func Infof(format string, args ...any) {
	Info(fmt.Sprintf(format, args...))
}

// InfoTo prints an informational message to w.
func InfoTo(w io.Writer, msg string) {
	pterm.Info.WithWriter(w).Println(msg)
}

// Warn prints a warning message to stderr with a warning prefix.
func Warn(msg string) {
	WarnTo(os.Stderr, msg)
}

// Warnf prints a formatted warning message to stderr.
func Warnf(format string, args ...any) {
	Warn(fmt.Sprintf(format, args...))
}

// WarnTo prints a warning message to w.
func WarnTo(w io.Writer, msg string) {
	pterm.Warning.WithWriter(w).Println(msg)
}

// Success prints a success message to stdout with a success prefix.
func Success(msg string) {
	SuccessTo(os.Stdout, msg)
}

// Successf prints a formatted success message to stdout.
func Successf(format string, args ...any) {
	Success(fmt.Sprintf(format, args...))
}

// SuccessTo prints a success message to w.
func SuccessTo(w io.Writer, msg string) {
	pterm.Success.WithWriter(w).Println(msg)
}
