//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals cancel the command context: Ctrl-C and service managers.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
