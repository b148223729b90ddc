// Package sysinfo captures a snapshot of the running environment for
// embedding in archive metadata.
package sysinfo

import (
	"os"
	"runtime"
)

// Snapshot returns a description of the current process environment.
// The result is JSON-encodable and purely informational; loaders never
// interpret it.
func Snapshot() map[string]any {
	hostname, _ := os.Hostname()
	return map[string]any{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"num_cpu":    runtime.NumCPU(),
		"hostname":   hostname,
		"pid":        os.Getpid(),
	}
}
