// serverrunner wraps a Minecraft server process in an interactive console:
// server output is relayed to the terminal, typed lines go to the server's
// stdin, and a couple of pseudo-commands (`exit`, `fakelog`) are handled
// locally.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/Mooling0602/MCDRServerRunner/config"
	"github.com/Mooling0602/MCDRServerRunner/runlog"
	"github.com/Mooling0602/MCDRServerRunner/runner"
)

const version = "1.0.0"

func main() {
	flags := flag.NewFlagSet("serverrunner", flag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: serverrunner [flags]\n\nConsole commands once running:\n  exit            stop the server and quit\n  fakelog <msg>   print a synthesized server log line\n  anything else   forwarded to the server console\n\nFlags:\n%s", flags.FlagUsages())
	}

	jar := flags.String("jar", config.DefaultJar, "server archive to launch")
	java := flags.String("java", config.DefaultJava, "java binary")
	jvmArgs := flags.StringArray("jvm-arg", nil, "extra JVM argument (repeatable)")
	command := flags.String("command", "", "full launch command, replacing the java invocation")
	usePty := flags.Bool("pty", false, "run the server under a pty instead of the stdbuf wrapper")
	stopTimeout := flags.Duration("stop-timeout", config.DefaultStopTimeout, "how long to wait for the server after `stop` before killing it")
	pollInterval := flags.Duration("poll-interval", config.DefaultPollInterval, "liveness poll interval of the main loop")
	noColor := flags.Bool("no-color", false, "disable colored status output")
	noWatch := flags.Bool("no-watch", false, "do not watch the server jar for changes")
	logFile := flags.String("log", "", "append trace output to this file")
	showVersion := flags.Bool("version", false, "print version and exit")

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println("serverrunner " + version)
		return
	}

	if *noColor || !stdoutIsTerminal() {
		runlog.DisableColor()
	}

	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
		if err != nil {
			runlog.FatalError(fmt.Errorf("could not open trace file %s: %v", *logFile, err))
		}
		runlog.TraceLogger = runlog.NewTraceLogger(f)
	}

	cfg := config.New()
	cfg.Jar = *jar
	cfg.Java = *java
	cfg.JVMArgs = *jvmArgs
	cfg.Command = config.ParseCommand(*command)
	cfg.StopTimeout = *stopTimeout
	cfg.PollInterval = *pollInterval
	cfg.WatchJar = !*noWatch
	if *usePty {
		cfg.Buffering = config.BufferPty
	}

	if err := runner.Run(cfg); err != nil {
		runlog.FatalError(err)
	}
}
