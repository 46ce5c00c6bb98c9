package progress

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// spinnerInterval is the frame delay for the activity spinner.
const spinnerInterval = 100 * time.Millisecond

// StartSpinner shows a spinner with the given suffix on w and returns the
// function that stops it. On non-terminal writers it does nothing.
func StartSpinner(w io.Writer, suffix string) (stop func()) {
	caps := DetectTerminalCapabilities(w)
	if !caps.IsTTY {
		return func() {}
	}

	symbols := SelectSymbols(caps)
	s := spinner.New(spinner.CharSets[symbols.SpinnerSet], spinnerInterval, spinner.WithWriter(w))
	s.Suffix = " " + suffix
	s.Start()
	return s.Stop
}
