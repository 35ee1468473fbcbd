// Package relay copies server output to the controlling terminal, one line at
// a time, verbatim. One relay runs per output stream so that a chatty stderr
// cannot starve stdout or vice versa; no ordering holds between the two.
package relay

import (
	"bufio"
	"fmt"
	"io"
)

// maxLineSize bounds a single relayed line. Server stack traces and data
// dumps can far exceed bufio's 64KB default.
const maxLineSize = 1024 * 1024

// Relay copies lines from r to w until EOF or a read error, both of which
// mean the stream is gone and the relay's job is done. Each line is written
// with a single Write call, so two relays can share one *os.File without
// interleaving partial lines, and nothing is buffered on the way out.
func Relay(r io.Reader, w io.Writer) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		fmt.Fprintln(w, scanner.Text())
	}
}

// Start runs Relay in its own goroutine and returns a channel that is closed
// when the stream ends.
func Start(r io.Reader, w io.Writer) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		Relay(r, w)
	}()
	return done
}
