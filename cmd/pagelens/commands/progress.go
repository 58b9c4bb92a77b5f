package commands

import (
	"time"

	"github.com/briandowns/spinner"
)

// spinnerProgress shows a terminal spinner for long steps.
type spinnerProgress struct {
	s *spinner.Spinner
}

func newSpinnerProgress() *spinnerProgress {
	return &spinnerProgress{s: spinner.New(spinner.CharSets[11], 100*time.Millisecond)}
}

func (p *spinnerProgress) Start(message string) {
	p.s.Suffix = " " + message
	p.s.Start()
}

func (p *spinnerProgress) Stop() {
	p.s.Stop()
}

// noopProgress silences progress output, used for JSON mode and the server.
type noopProgress struct{}

func (noopProgress) Start(string) {}
func (noopProgress) Stop()        {}
