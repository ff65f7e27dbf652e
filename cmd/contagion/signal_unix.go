//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals end a paced run early; the partial history is still reported.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
