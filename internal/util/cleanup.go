package util

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// InterruptContext is cancelled on SIGINT or SIGTERM. A second signal after
// stop restores the default behaviour and kills the process.
func InterruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// RemoveIfEmpty removes dir only when it has no entries left.
func RemoveIfEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return false
	}

	return os.Remove(dir) == nil
}
