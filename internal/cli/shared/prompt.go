package shared

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the operator questions on a terminal. When the input is not
// a terminal every question returns its default without reading.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer, interactive bool) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, interactive: interactive}
}

// Interactive reports whether questions are actually asked.
func (p *Prompter) Interactive() bool {
	return p.interactive
}

// Ask prints question and returns the trimmed answer, or def when the answer
// is empty or the session is not interactive.
func (p *Prompter) Ask(question, def string) string {
	if !p.interactive {
		return def
	}
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return def
	}
	if answer := strings.TrimSpace(line); answer != "" {
		return answer
	}
	return def
}

// Confirm asks a yes/no question. Only "y" or "yes" confirm.
func (p *Prompter) Confirm(question string, def bool) bool {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	if !p.interactive {
		return def
	}
	fmt.Fprintf(p.out, "%s [%s] ", question, hint)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return def
	case "y", "yes":
		return true
	default:
		return false
	}
}
