package runlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Logger prints wrapper status lines to the operator console. Server output
// never goes through here; it is relayed verbatim by the relay package.
type Logger struct {
	mu         sync.Mutex
	out        *log.Logger
	err        *log.Logger
	suppressed bool
	noColor    bool
}

func New(out, errOut io.Writer) *Logger {
	return &Logger{
		out: log.New(out, "", 0),
		err: log.New(errOut, "", 0),
	}
}

var DefaultLogger = New(os.Stdout, os.Stderr)

const (
	red     = "\x1b[31m"
	green   = "\x1b[32m"
	yellow  = "\x1b[33m"
	magenta = "\x1b[35m"
	reset   = "\x1b[0m"
)

var colorTokens = map[string]string{
	"{red}":     red,
	"{green}":   green,
	"{yellow}":  yellow,
	"{magenta}": magenta,
	"{reset}":   reset,
}

func Suppress() { DefaultLogger.Suppress() }

func DisableColor() { DefaultLogger.DisableColor() }

func Colorized(msg string) bool { return DefaultLogger.Colorized(msg) }

func Red(msg string) bool { return DefaultLogger.Red(msg) }

func Green(msg string) bool { return DefaultLogger.Green(msg) }

func Yellow(msg string) bool { return DefaultLogger.Yellow(msg) }

func Error(err error) bool { return DefaultLogger.Error(err) }

func ErrorString(msg string) bool { return DefaultLogger.ErrorString(msg) }

func FatalError(err error) { DefaultLogger.FatalError(err) }

// Suppress stops all further console output. Called during shutdown so that
// late errors from background tasks do not land on the operator's terminal
// after the wrapper has said goodbye. Trace output is unaffected.
func (l *Logger) Suppress() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.suppressed = true
}

func (l *Logger) DisableColor() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.noColor = true
}

// Colorized prints a message containing {color} template tokens.
func (l *Logger) Colorized(msg string) bool {
	return l.emit(msg, false)
}

func (l *Logger) Red(msg string) bool    { return l.emit("{red}"+msg, false) }
func (l *Logger) Green(msg string) bool  { return l.emit("{green}"+msg, false) }
func (l *Logger) Yellow(msg string) bool { return l.emit("{yellow}"+msg, false) }

func (l *Logger) Error(err error) bool {
	return l.emit("{red}"+err.Error(), true)
}

func (l *Logger) ErrorString(msg string) bool {
	return l.emit("{red}"+msg, true)
}

func (l *Logger) FatalError(err error) {
	l.Error(err)
	os.Exit(1)
}

func (l *Logger) emit(msg string, isError bool) (printed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.suppressed {
		return false
	}

	msg = l.formatColors(msg)
	if !l.noColor {
		msg += reset
	}
	if isError {
		l.err.Print(msg)
	} else {
		l.out.Print(msg)
	}
	return true
}

func (l *Logger) formatColors(msg string) string {
	for token, code := range colorTokens {
		if l.noColor {
			msg = strings.ReplaceAll(msg, token, "")
		} else {
			msg = strings.ReplaceAll(msg, token, code)
		}
	}
	return msg
}

// TraceLogger, when set, receives timestamped diagnostic lines. It is nil
// unless the operator passed --log; Trace is a no-op in that case.
var TraceLogger *TraceLog

type TraceLog struct {
	logger *log.Logger
}

func NewTraceLogger(w io.Writer) *TraceLog {
	return &TraceLog{logger: log.New(w, "", log.LstdFlags|log.Lmicroseconds)}
}

func Trace(format string, args ...interface{}) {
	if TraceLogger != nil {
		TraceLogger.logger.Output(2, fmt.Sprintf(format, args...))
	}
}
