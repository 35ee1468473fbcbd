//go:build !windows

package supervisor

import (
	"os"

	"github.com/burke/ttyutils"
)

// disableEcho turns off echo on the pty so that lines forwarded to the
// server's stdin do not come straight back through the relay as output.
func disableEcho(ptmx *os.File) {
	// Best effort; a server behind an echoing pty is annoying, not broken.
	_, _ = ttyutils.NoEcho(ptmx.Fd())
}
