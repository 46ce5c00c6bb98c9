// Package progress provides terminal capability detection and a spinner for
// long-running captured commands.
package progress

import (
	"io"
	"os"

	"golang.org/x/term"
)

// TerminalCapabilities describes what the output terminal can render.
type TerminalCapabilities struct {
	IsTTY           bool
	SupportsColor   bool
	SupportsUnicode bool
	Width           int
}

// ProgressSymbols is the symbol set chosen for the detected terminal.
type ProgressSymbols struct {
	Checkmark  string
	Failure    string
	SpinnerSet int
}

// fdWriter is satisfied by *os.File.
type fdWriter interface {
	Fd() uintptr
}

// DetectTerminalCapabilities detects terminal features of w.
// Checks: w isatty, NO_COLOR env, DECG_ASCII env, terminal width.
// Writers that are not files (buffers in tests) are never terminals.
func DetectTerminalCapabilities(w io.Writer) TerminalCapabilities {
	f, ok := w.(fdWriter)
	if !ok {
		return TerminalCapabilities{}
	}
	fd := int(f.Fd())
	isTTY := term.IsTerminal(fd)

	noColor := os.Getenv("NO_COLOR") != ""
	forceASCII := os.Getenv("DECG_ASCII") == "1"

	width := 0
	if isTTY {
		if cols, _, err := term.GetSize(fd); err == nil {
			width = cols
		}
	}

	return TerminalCapabilities{
		IsTTY:           isTTY,
		SupportsColor:   isTTY && !noColor,
		SupportsUnicode: isTTY && !forceASCII,
		Width:           width,
	}
}

// SelectSymbols returns the appropriate symbol set based on terminal capabilities.
// Unicode: ✓/✗ with braille spinner (set 14). ASCII: [OK]/[FAIL] with |/-\ spinner (set 9).
func SelectSymbols(caps TerminalCapabilities) ProgressSymbols {
	if caps.SupportsUnicode {
		return ProgressSymbols{
			Checkmark:  "✓",
			Failure:    "✗",
			SpinnerSet: 14,
		}
	}

	return ProgressSymbols{
		Checkmark:  "[OK]",
		Failure:    "[FAIL]",
		SpinnerSet: 9,
	}
}

// IsInteractive reports whether r is a terminal (used before prompting).
func IsInteractive(r io.Reader) bool {
	f, ok := r.(fdWriter)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
