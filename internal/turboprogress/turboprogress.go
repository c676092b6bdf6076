// SPDX-License-Identifier: BSD-3-Clause

// Package turboprogress provides a terminal spinner for the benchmark
// subcommand's multi-strategy run: one line per strategy, redrawn in
// place on a terminal, appended line-by-line when stderr isn't one.
package turboprogress

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

var spinChars = []string{"|", "/", "-", "\\"}

type lineState struct {
	label     string
	status    string
	statusNew bool
	spinIdx   int
}

// Spinner draws one status line per registered strategy.
type Spinner struct {
	mu     sync.Mutex
	lines  []lineState
	ticker *time.Ticker
	done   chan struct{}
}

// New creates an idle Spinner.
func New() *Spinner {
	return &Spinner{done: make(chan struct{})}
}

// Add registers a new status line with the given label.
func (s *Spinner) Add(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, lineState{label: label, status: "pending"})
}

// Update sets the status text for label.
func (s *Spinner) Update(label, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].label == label {
			if s.lines[i].status != status {
				s.lines[i].status = status
				s.lines[i].statusNew = true
			}
			return
		}
	}
}

// Start begins redrawing on a 150ms tick.
func (s *Spinner) Start() {
	s.draw(true)
	s.ticker = time.NewTicker(150 * time.Millisecond)
	go func() {
		for {
			select {
			case <-s.done:
				return
			case <-s.ticker.C:
				s.draw(true)
			}
		}
	}()
}

// Stop halts redrawing and prints a final, static rendering.
func (s *Spinner) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.done)
	s.draw(false)
}

func (s *Spinner) draw(goUp bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	isTTY := term.IsTerminal(int(os.Stderr.Fd()))
	for i := range s.lines {
		l := &s.lines[i]
		if !isTTY && !l.statusNew {
			continue
		}
		fmt.Fprintf(os.Stderr, "%-20s %s %s\n", l.label, spinChars[l.spinIdx], l.status)
		l.statusNew = false
		l.spinIdx = (l.spinIdx + 1) % len(spinChars)
	}
	if goUp && isTTY {
		for range s.lines {
			fmt.Fprint(os.Stderr, "\x1b[1A")
		}
	}
}
