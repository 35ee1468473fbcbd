// Package runner wires the wrapper together: it starts the server, relays its
// output, captures operator input, and drives the command loop until the
// server is gone.
package runner

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/Mooling0602/MCDRServerRunner/config"
	"github.com/Mooling0602/MCDRServerRunner/console"
	"github.com/Mooling0602/MCDRServerRunner/filemonitor"
	"github.com/Mooling0602/MCDRServerRunner/relay"
	"github.com/Mooling0602/MCDRServerRunner/runlog"
	"github.com/Mooling0602/MCDRServerRunner/supervisor"
)

// captureJoinTimeout bounds how long shutdown waits for the input capture
// goroutine to notice the closed console.
const captureJoinTimeout = time.Second

// Run supervises one server process from launch to reaping. It returns once
// the shutdown sequence has completed, whether the trigger was an `exit`
// command, an interrupt, or the server exiting on its own.
func Run(cfg config.Config) error {
	if cfg.Log == nil {
		cfg.Log = runlog.DefaultLogger
	}

	argv := cfg.ServerCommand()
	proc, err := supervisor.Start(argv, supervisor.Options{
		Pty:         cfg.Buffering == config.BufferPty,
		StopTimeout: cfg.StopTimeout,
	})
	if err != nil {
		return err
	}

	cfg.Log.Colorized(fmt.Sprintf("{green}server started{reset} (pid %d)", proc.Pid()))
	runlog.Trace("launch vector: %q", argv)

	// One relay per stream. Under a pty there is only the merged one.
	relay.Start(proc.Stdout(), cfg.Stdout)
	if stderr := proc.Stderr(); stderr != nil {
		relay.Start(stderr, cfg.Stdout)
	}

	stop := make(chan struct{})
	lines := console.Capture(cfg.Stdin, stop)
	captureDone := lines

	var monitor filemonitor.FileMonitor
	var jarChanges <-chan []string
	if cfg.WatchJar {
		monitor, jarChanges = watchJar(cfg.Jar)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	for running := true; running; {
		if _, exited := proc.Poll(); exited {
			// The server went away on its own; nothing left to stop.
			break
		}

		select {
		case line, ok := <-lines:
			if !ok {
				// Console reached EOF. Keep supervising until the server
				// exits or an interrupt arrives.
				lines = nil
				continue
			}
			switch cmd := console.Parse(line); cmd.Kind {
			case console.Exit:
				_ = proc.Stop()
				running = false
			case console.FakeLog:
				fmt.Fprintln(cfg.Stdout, console.FakeLogLine(time.Now(), cmd.Text))
			case console.Forward:
				if _, exited := proc.Poll(); !exited {
					// A write can still race the exit; losing that line is
					// harmless and the next Poll reports the exit.
					_ = proc.WriteLine(cmd.Text)
				}
			}
		case <-interrupt:
			fmt.Fprintln(cfg.Stdout)
			cfg.Log.Yellow("interrupt received, shutting down server...")
			_ = proc.Stop()
			running = false
		case batch := <-jarChanges:
			for _, path := range batch {
				cfg.Log.Colorized(fmt.Sprintf("{yellow}%s changed on disk; restart the server to apply", path))
			}
		case <-time.After(cfg.PollInterval):
		}
	}

	teardown(cfg, proc, monitor, stop, captureDone)
	return nil
}

// teardown runs the shared shutdown tail: stop the capture goroutine, make
// sure the server is stopped (a no-op when it already exited), and release
// everything. Safe on every exit path.
func teardown(
	cfg config.Config,
	proc *supervisor.ServerProcess,
	monitor filemonitor.FileMonitor,
	stop chan struct{},
	captureDone <-chan string,
) {
	close(stop)

	// Closing the controlling input unblocks a capture goroutine that is
	// sitting in a read.
	if closer, ok := cfg.Stdin.(io.Closer); ok {
		closer.Close()
	}

	joinCapture(captureDone)

	_ = proc.Stop()

	// Nothing should land on the operator's console after this point; the
	// trace log still gets everything.
	cfg.Log.Suppress()

	if monitor != nil {
		monitor.Close()
	}
}

// joinCapture waits, bounded, for the capture channel to close.
func joinCapture(lines <-chan string) {
	deadline := time.After(captureJoinTimeout)
	for {
		select {
		case _, ok := <-lines:
			if !ok {
				return
			}
		case <-deadline:
			runlog.Trace("input capture did not stop within %v", captureJoinTimeout)
			return
		}
	}
}

// watchJar sets up the advisory jar monitor. Failure to watch is not worth
// refusing to run the server over; the wrapper just goes without.
func watchJar(jar string) (filemonitor.FileMonitor, <-chan []string) {
	monitor, err := filemonitor.NewFileMonitor(filemonitor.DefaultFileChangeDelay)
	if err != nil {
		runlog.Trace("file monitor unavailable: %v", err)
		return nil, nil
	}
	if err := monitor.Add(jar); err != nil {
		runlog.Trace("cannot watch %s: %v", jar, err)
		monitor.Close()
		return nil, nil
	}
	return monitor, monitor.Listen()
}
