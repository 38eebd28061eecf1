//go:build windows

package main

import "os"

// shutdownSignals cancel the command context. SIGTERM is not delivered on
// Windows.
var shutdownSignals = []os.Signal{os.Interrupt}
