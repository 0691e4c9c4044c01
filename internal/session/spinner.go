package session

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const spinnerInterval = 100 * time.Millisecond

var spinnerFrames = []string{"|", "/", "-", "\\"}

// Spinner animates a single line until stopped.
type Spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// StartSpinner starts drawing `message` followed by a spinning bar on `out`,
// callers must call Stop before writing to `out` again.
func StartSpinner(out io.Writer, message string) *Spinner {
	s := &Spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *Spinner) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	frame := 0
	for {
		fmt.Fprintf(s.out, "\r%s %s", s.message, spinnerFrames[frame%len(spinnerFrames)])
		frame++
		select {
		case <-s.stop:
			fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.message)+2))
			return
		case <-ticker.C:
		}
	}
}

// Stop clears the line and waits for the spinner to finish, it is safe to
// call more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.stop)
	})
	s.wg.Wait()
}
