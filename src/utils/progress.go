package utils

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"secmaster/src/interfaces"
	"secmaster/src/models"
)

// ConsoleProgress draws a one-line text progress bar.
type ConsoleProgress struct {
	Out    io.Writer
	Width  int
	Prefix string
	mu     sync.Mutex
}

// -----------------------------------------------------------------------------

func NewConsoleProgress(out io.Writer, prefix string) *ConsoleProgress {
	return &ConsoleProgress{Out: out, Width: 50, Prefix: prefix}
}

// -----------------------------------------------------------------------------

// Render returns the bar for iteration out of total, without line control.
func (p *ConsoleProgress) Render(iteration, total int) string {
	if total <= 0 {
		total = 1
	}
	iteration = max(0, min(iteration, total))

	filled := p.Width * iteration / total
	bar := strings.Repeat("█", filled) + strings.Repeat("-", p.Width-filled)
	percent := 100 * float64(iteration) / float64(total)

	return fmt.Sprintf("%s |%s| %.1f%%", p.Prefix, bar, percent)
}

// -----------------------------------------------------------------------------

// Step redraws the bar in place and ends the line on the last iteration.
func (p *ConsoleProgress) Step(iteration, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.Out, "\r%s", p.Render(iteration, total))
	if iteration >= total {
		fmt.Fprintln(p.Out)
	}
}

// -----------------------------------------------------------------------------

func (p *ConsoleProgress) Report(ev models.MProgress) {
	p.Step(ev.Index, ev.Total)
}

// -----------------------------------------------------------------------------

// MultiReporter fans one progress event out to several reporters.
type MultiReporter []interfaces.IProgressReporter

func (m MultiReporter) Report(ev models.MProgress) {
	for _, r := range m {
		if r != nil {
			r.Report(ev)
		}
	}
}
