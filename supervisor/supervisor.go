package supervisor

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"

	"github.com/Mooling0602/MCDRServerRunner/config"
)

// forceKillTimeout is how long Stop waits after SIGTERM before sending
// SIGKILL to a server that ignored both the stop command and the signal.
const forceKillTimeout = time.Second

// Options control how a server process is launched and stopped.
type Options struct {
	// Pty runs the child under a pseudo-terminal. Its stdout and stderr
	// arrive merged on Stdout; Stderr returns nil.
	Pty bool
	// StopTimeout is how long Stop waits for a natural exit after writing
	// the stop command. Zero means config.DefaultStopTimeout.
	StopTimeout time.Duration
}

// ServerProcess is a supervised server child. It is created by Start and owns
// the child's stdio ends; the caller reads Stdout/Stderr, writes lines with
// WriteLine, and checks liveness with Poll.
type ServerProcess struct {
	cmd    *exec.Cmd
	stdin  io.Writer
	stdout io.Reader
	stderr io.Reader

	stopTimeout time.Duration

	mu       sync.Mutex
	exitCode int
	done     chan struct{}
}

// Start launches the server from the given argument vector. A failure to
// launch is fatal to the wrapper; there is nothing to supervise.
//
// The child's pipes are created by hand rather than with cmd.StdoutPipe so
// that nothing closes the read ends behind the relays' backs: the relays must
// drain every line the server wrote before it exited, and EOF arrives
// naturally once the child's ends are gone.
func Start(argv []string, opts Options) (*ServerProcess, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty server command")
	}

	cmd := exec.Command(argv[0], argv[1:]...)

	p := &ServerProcess{
		cmd:         cmd,
		stopTimeout: opts.StopTimeout,
		done:        make(chan struct{}),
	}
	if p.stopTimeout == 0 {
		p.stopTimeout = config.DefaultStopTimeout
	}

	if opts.Pty {
		// pty.Start makes the child a session leader on its new terminal,
		// which already detaches it from ours. Setting Setpgid as well would
		// make the post-setsid setpgid call fail with EPERM.
		ptmx, err := pty.Start(cmd)
		if err != nil {
			return nil, fmt.Errorf("start %s under pty: %v", argv[0], err)
		}
		disableEcho(ptmx)
		p.stdin = ptmx
		p.stdout = ptmx
	} else {
		cmd.SysProcAttr = sysProcAttr()

		stdinR, stdinW, err := os.Pipe()
		if err != nil {
			return nil, fmt.Errorf("stdin pipe: %v", err)
		}
		stdoutR, stdoutW, err := os.Pipe()
		if err != nil {
			return nil, fmt.Errorf("stdout pipe: %v", err)
		}
		stderrR, stderrW, err := os.Pipe()
		if err != nil {
			return nil, fmt.Errorf("stderr pipe: %v", err)
		}

		cmd.Stdin = stdinR
		cmd.Stdout = stdoutW
		cmd.Stderr = stderrW

		err = cmd.Start()

		// The child holds its own copies now (or never will); drop ours so
		// the relays see EOF when the child goes away.
		stdinR.Close()
		stdoutW.Close()
		stderrW.Close()

		if err != nil {
			stdinW.Close()
			stdoutR.Close()
			stderrR.Close()
			return nil, fmt.Errorf("start %s: %v", argv[0], err)
		}

		p.stdin = stdinW
		p.stdout = stdoutR
		p.stderr = stderrR
	}

	go p.reap()

	return p, nil
}

func (p *ServerProcess) reap() {
	err := p.cmd.Wait()

	p.mu.Lock()
	if p.cmd.ProcessState != nil {
		p.exitCode = p.cmd.ProcessState.ExitCode()
	} else if err != nil {
		p.exitCode = -1
	}
	p.mu.Unlock()

	// The pty master is deliberately not closed here: closing it would throw
	// away output the child wrote just before exiting. Reads on the master
	// drain that output and then fail on their own once the child side is
	// gone, which is how the relay learns the stream ended.
	close(p.done)
}

// Pid returns the child's process ID.
func (p *ServerProcess) Pid() int {
	return p.cmd.Process.Pid
}

// Stdout returns the child's standard output stream. Under a pty it carries
// stderr as well.
func (p *ServerProcess) Stdout() io.Reader {
	return p.stdout
}

// Stderr returns the child's error stream, or nil under a pty.
func (p *ServerProcess) Stderr() io.Reader {
	return p.stderr
}

// Poll is a non-blocking liveness check.
func (p *ServerProcess) Poll() (code int, exited bool) {
	select {
	case <-p.done:
		p.mu.Lock()
		code = p.exitCode
		p.mu.Unlock()
		return code, true
	default:
		return 0, false
	}
}

// WriteLine writes one line to the child's stdin. Pipes are unbuffered, so
// the line reaches the child immediately. Writing to a child that has exited
// returns an error; callers forwarding operator input are expected to drop
// it, since the next Poll observes the exit anyway.
func (p *ServerProcess) WriteLine(line string) error {
	_, err := io.WriteString(p.stdin, line+"\n")
	return err
}

// Stop runs the shutdown sequence: write the literal `stop` command, give the
// server stopTimeout to exit on its own, then escalate to SIGTERM and, after
// forceKillTimeout, SIGKILL. It blocks until the child is reaped and is
// idempotent: calling it on an exited child does nothing.
func (p *ServerProcess) Stop() error {
	select {
	case <-p.done:
		return nil
	default:
	}

	if err := p.WriteLine("stop"); err == nil {
		select {
		case <-p.done:
			return nil
		case <-time.After(p.stopTimeout):
		}
	}

	return p.kill()
}

func (p *ServerProcess) kill() error {
	_ = p.cmd.Process.Signal(syscall.SIGTERM)

	select {
	case <-p.done:
		return nil
	case <-time.After(forceKillTimeout):
	}

	if err := p.cmd.Process.Kill(); err != nil {
		select {
		case <-p.done:
			return nil
		default:
			return fmt.Errorf("kill server: %v", err)
		}
	}
	<-p.done
	return nil
}
