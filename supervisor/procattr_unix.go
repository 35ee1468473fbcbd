//go:build !windows

package supervisor

import "syscall"

// sysProcAttr puts the server in its own process group so that a Ctrl-C on
// the wrapper's terminal does not reach it directly. Shutdown always goes
// through the stop-command protocol first.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}
