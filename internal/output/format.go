// Package output provides terminal output formatting for the decg CLI:
// status symbols, step headers and tables. It writes to an io.Writer so
// commands can route output through cobra's OutOrStdout.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	green   = color.New(color.FgGreen, color.Bold).SprintFunc()
	blue    = color.New(color.FgBlue, color.Bold).SprintFunc()
	yellow  = color.New(color.FgYellow, color.Bold).SprintFunc()
	red     = color.New(color.FgRed, color.Bold).SprintFunc()
	cyan    = color.New(color.FgCyan, color.Bold).SprintFunc()
	white   = color.New(color.FgWhite, color.Bold).SprintFunc()
	dim     = color.New(color.Faint).SprintFunc()
	magenta = color.New(color.FgMagenta).SprintFunc()
)

const ruleWidth = 50

// ruleFor narrows the title rule to the terminal width when out is a narrow
// terminal.
func ruleFor(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok {
		return ruleWidth
	}
	if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 && width < ruleWidth {
		return width
	}
	return ruleWidth
}

// Success prints "✓ message".
func Success(out io.Writer, format string, args ...any) {
	fmt.Fprintf(out, "%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

// Info prints "ℹ message".
func Info(out io.Writer, format string, args ...any) {
	fmt.Fprintf(out, "%s %s\n", blue("ℹ"), fmt.Sprintf(format, args...))
}

// Warning prints "⚠ message".
func Warning(out io.Writer, format string, args ...any) {
	fmt.Fprintf(out, "%s %s\n", yellow("⚠"), fmt.Sprintf(format, args...))
}

// Failure prints "✗ message".
func Failure(out io.Writer, format string, args ...any) {
	fmt.Fprintf(out, "%s %s\n", red("✗"), fmt.Sprintf(format, args...))
}

// Title prints a bold title followed by a rule.
func Title(out io.Writer, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	fmt.Fprintf(out, "\n%s\n%s\n", white(text), dim(strings.Repeat("=", ruleFor(out))))
}

// Step prints a numbered step header, e.g. "[1/4] Hub branch...".
func Step(out io.Writer, n, total int, name string) {
	fmt.Fprintf(out, "\n%s %s\n", cyan(fmt.Sprintf("[%d/%d]", n, total)), white(name+"..."))
}

// Item prints an indented detail line with a marker.
func Item(out io.Writer, mark Mark, format string, args ...any) {
	fmt.Fprintf(out, "    %s %s\n", mark.render(), fmt.Sprintf(format, args...))
}

// Plain prints an indented line without a marker.
func Plain(out io.Writer, format string, args ...any) {
	fmt.Fprintf(out, "  %s\n", fmt.Sprintf(format, args...))
}

// Section prints a section label such as "Hub:".
func Section(out io.Writer, label string) {
	fmt.Fprintf(out, "\n%s\n", magenta(label))
}

// Mark is the leading marker of an Item line.
type Mark int

// Markers for Item.
const (
	MarkOK Mark = iota
	MarkRemoved
	MarkAdded
	MarkDeleted
	MarkChanged
	MarkBullet
)

func (m Mark) render() string {
	switch m {
	case MarkOK:
		return green("✓")
	case MarkRemoved:
		return red("✗")
	case MarkAdded:
		return green("+")
	case MarkDeleted:
		return red("-")
	case MarkChanged:
		return yellow("~")
	default:
		return dim("•")
	}
}
