package runner_test

import (
	"bytes"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/Mooling0602/MCDRServerRunner/config"
	"github.com/Mooling0602/MCDRServerRunner/runlog"
	"github.com/Mooling0602/MCDRServerRunner/runner"
)

func TestMain(m *testing.M) {
	// Wrapper status lines would interleave with the test output.
	runlog.Suppress()
	os.Exit(m.Run())
}

// echoServer stands in for a Minecraft server: it answers every console line
// and honors the stop command the way the real thing does.
const echoServer = `while read line; do
	if [ "$line" = stop ]; then
		echo "stopping"
		exit 0
	fi
	echo "got $line"
done`

// lockedBuffer collects controlling output written concurrently by the
// relays and the main loop.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig(script string) (config.Config, *io.PipeWriter, *lockedBuffer) {
	stdinR, stdinW := io.Pipe()
	out := &lockedBuffer{}

	cfg := config.New()
	cfg.Command = []string{"sh", "-c", script}
	cfg.PollInterval = 10 * time.Millisecond
	cfg.StopTimeout = 2 * time.Second
	cfg.WatchJar = false
	cfg.Stdin = stdinR
	cfg.Stdout = out
	cfg.Log = runlog.New(out, out)
	cfg.Log.DisableColor()
	return cfg, stdinW, out
}

func waitContains(t *testing.T, out *lockedBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(out.String(), want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("output never contained %q:\n%s", want, out.String())
}

func waitDone(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not return")
	}
}

func TestRunForwardsAndExits(t *testing.T) {
	cfg, stdin, out := testConfig(echoServer)

	done := make(chan error, 1)
	go func() { done <- runner.Run(cfg) }()

	if _, err := io.WriteString(stdin, "say hello\n"); err != nil {
		t.Fatal(err)
	}
	waitContains(t, out, "got say hello")

	if _, err := io.WriteString(stdin, "exit\n"); err != nil {
		t.Fatal(err)
	}
	waitDone(t, done)

	// The shutdown went through the stop command, which the child answered.
	waitContains(t, out, "stopping")

	if strings.Contains(out.String(), "got exit") {
		t.Fatal("`exit` was forwarded to the server")
	}
}

func TestRunFakeLog(t *testing.T) {
	cfg, stdin, out := testConfig(echoServer)

	done := make(chan error, 1)
	go func() { done <- runner.Run(cfg) }()

	if _, err := io.WriteString(stdin, "fakelog Server ready\n"); err != nil {
		t.Fatal(err)
	}
	waitContains(t, out, "INFO]: Server ready")

	line := regexp.MustCompile(`\[\d{2}:\d{2}:\d{2} INFO\]: Server ready`)
	if !line.MatchString(out.String()) {
		t.Fatalf("malformed fakelog line:\n%s", out.String())
	}
	if strings.Contains(out.String(), "got fakelog") {
		t.Fatal("fakelog was forwarded to the server")
	}

	if _, err := io.WriteString(stdin, "exit\n"); err != nil {
		t.Fatal(err)
	}
	waitDone(t, done)
}

func TestRunExitIsCaseInsensitive(t *testing.T) {
	cfg, stdin, out := testConfig(echoServer)

	done := make(chan error, 1)
	go func() { done <- runner.Run(cfg) }()

	if _, err := io.WriteString(stdin, "EXIT\n"); err != nil {
		t.Fatal(err)
	}
	waitDone(t, done)
	waitContains(t, out, "stopping")
}

func TestRunReturnsWhenServerExitsOnItsOwn(t *testing.T) {
	cfg, _, out := testConfig(`echo "crash and burn"; exit 3`)

	done := make(chan error, 1)
	go func() { done <- runner.Run(cfg) }()

	waitDone(t, done)
	waitContains(t, out, "crash and burn")
}

func TestRunInterrupt(t *testing.T) {
	cfg, stdin, out := testConfig(echoServer)

	done := make(chan error, 1)
	go func() { done <- runner.Run(cfg) }()

	// Make sure the loop is up before delivering the signal.
	if _, err := io.WriteString(stdin, "ping\n"); err != nil {
		t.Fatal(err)
	}
	waitContains(t, out, "got ping")

	if err := syscall.Kill(os.Getpid(), syscall.SIGINT); err != nil {
		t.Fatal(err)
	}

	waitDone(t, done)
	waitContains(t, out, "stopping")

	// The notice must land on the configured controlling output, not the
	// process's own stdout.
	if !strings.Contains(out.String(), "interrupt received") {
		t.Fatalf("interrupt notice missing from controlling output:\n%s", out.String())
	}
}
