package output

import (
	"fmt"
	"io"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a wait message while a command blocks, e.g. until the
// QR payload arrives. One-shot: once stopped it cannot be restarted.
type Spinner struct {
	w       io.Writer
	message string
	stop    chan struct{}
}

// NewSpinner creates a spinner that writes to w.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:       w,
		message: message,
		stop:    make(chan struct{}),
	}
}

// Start begins the animation in the background.
func (s *Spinner) Start() {
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		frame := 0
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				fmt.Fprintf(s.w, "\r%s %s", spinnerFrames[frame%len(spinnerFrames)], s.message)
				frame++
			}
		}
	}()
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	close(s.stop)
	fmt.Fprint(s.w, "\r\033[K")
}

// Success halts the animation and prints a final success line.
func (s *Spinner) Success(message string) {
	close(s.stop)
	fmt.Fprintf(s.w, "\r\033[K✓ %s\n", message)
}

// Fail halts the animation and prints a final failure line.
func (s *Spinner) Fail(message string) {
	close(s.stop)
	fmt.Fprintf(s.w, "\r\033[K✗ %s\n", message)
}
