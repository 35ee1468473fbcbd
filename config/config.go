package config

import (
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/Mooling0602/MCDRServerRunner/runlog"
)

// Buffering selects how the server's output is kept line-buffered. Java
// block-buffers stdout when it is a pipe, so without a hint relayed lines can
// lag far behind the server. This only affects latency, never content.
type Buffering int

const (
	// BufferNone launches the server directly on plain pipes.
	BufferNone Buffering = iota
	// BufferStdbuf wraps the launch vector with `stdbuf -oL`.
	BufferStdbuf
	// BufferPty runs the server under a pseudo-terminal, which makes the JVM
	// line-buffer on its own. stdout and stderr arrive merged on one stream.
	BufferPty
)

const (
	DefaultJar          = "leaves-1.21.3.jar"
	DefaultJava         = "java"
	DefaultStopTimeout  = 10 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
)

// Config is the resolved runtime configuration for one supervised server.
// There are no config files and no environment variables; everything comes
// from flags or defaults.
type Config struct {
	// Java is the JVM binary and Jar the server archive to launch.
	Java    string
	Jar     string
	JVMArgs []string

	// Command, when non-empty, replaces the computed launch vector entirely.
	// Set from --command, split on spaces.
	Command []string

	Buffering    Buffering
	StopTimeout  time.Duration
	PollInterval time.Duration

	// WatchJar enables the advisory file monitor on Jar.
	WatchJar bool

	// Stdin and Stdout are the controlling input and output. They default to
	// the process's own stdio.
	Stdin  io.Reader
	Stdout io.Writer

	// Log receives the wrapper's own status lines. It defaults to the shared
	// console logger; anything replacing Stdout should replace this too.
	Log *runlog.Logger
}

func New() Config {
	return Config{
		Java:         DefaultJava,
		Jar:          DefaultJar,
		Buffering:    DefaultBuffering(),
		StopTimeout:  DefaultStopTimeout,
		PollInterval: DefaultPollInterval,
		WatchJar:     true,
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Log:          runlog.DefaultLogger,
	}
}

// DefaultBuffering returns the platform default: stdbuf everywhere it exists,
// plain pipes on Windows.
func DefaultBuffering() Buffering {
	if runtime.GOOS == "windows" {
		return BufferNone
	}
	return BufferStdbuf
}

// ParseCommand splits a --command value into a launch vector.
func ParseCommand(command string) []string {
	return strings.Fields(command)
}

// ServerCommand returns the argument vector that launches the server.
func (c Config) ServerCommand() []string {
	if len(c.Command) > 0 {
		return c.Command
	}

	argv := []string{c.Java}
	argv = append(argv, c.JVMArgs...)
	argv = append(argv, "-jar", c.Jar, "nogui")

	if c.Buffering == BufferStdbuf {
		argv = append([]string{"stdbuf", "-oL"}, argv...)
	}
	return argv
}
