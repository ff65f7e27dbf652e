//go:build windows

package main

import "os"

// shutdownSignals end a paced run early. SIGTERM does not exist on Windows.
var shutdownSignals = []os.Signal{os.Interrupt}
