// Package console reads operator input and classifies it. Everything the
// operator types is destined for the server except two local pseudo-commands:
// `exit`, which shuts the server down, and `fakelog <msg>`, which prints a
// synthesized server-style log line without touching the server at all.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

type CommandKind int

const (
	// Forward sends the line to the server's stdin untouched.
	Forward CommandKind = iota
	// Exit requests a graceful shutdown of the server and the wrapper.
	Exit
	// FakeLog prints a synthesized timestamped log line locally.
	FakeLog
)

// Command is one classified line of operator input.
type Command struct {
	Kind CommandKind
	// Text is the verbatim line for Forward, or the message after the
	// `fakelog ` prefix for FakeLog.
	Text string
}

const fakeLogPrefix = "fakelog "

// Parse classifies a captured line. `exit` matches case-insensitively and
// exactly; `fakelog` only with its trailing space, so a bare `fakelog` is
// forwarded like any other command. The remainder after the prefix is kept
// byte for byte.
func Parse(line string) Command {
	if strings.EqualFold(line, "exit") {
		return Command{Kind: Exit}
	}
	if strings.HasPrefix(line, fakeLogPrefix) {
		return Command{Kind: FakeLog, Text: line[len(fakeLogPrefix):]}
	}
	return Command{Kind: Forward, Text: line}
}

// FakeLogLine renders a synthesized log line the way the server itself
// formats them.
func FakeLogLine(t time.Time, msg string) string {
	return fmt.Sprintf("[%s INFO]: %s", t.Format("15:04:05"), msg)
}

// Capture reads lines from the controlling input on its own goroutine and
// delivers them, trimmed, in arrival order on the returned channel. The
// channel is closed when the input reaches EOF, fails, or stop is signalled,
// so the consumer can tell a closed console from a quiet one.
//
// A capture blocked in a read does not notice stop until the next line or
// until the input is closed; the shutdown path closes the controlling input
// for exactly that reason.
func Capture(r io.Reader, stop <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-stop:
				return
			}
		}
	}()
	return lines
}
