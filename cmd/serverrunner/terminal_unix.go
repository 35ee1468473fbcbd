//go:build !windows

package main

import (
	"os"

	"github.com/burke/ttyutils"
)

func stdoutIsTerminal() bool {
	return ttyutils.IsTerminal(os.Stdout.Fd())
}
