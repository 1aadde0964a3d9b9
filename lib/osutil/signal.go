package osutil

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// InterruptContext returns a context that is cancelled on the first SIGINT or
// SIGTERM. A second signal falls through to the default handler and kills
// the process.
func InterruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		if parent.Err() == nil {
			slog.Warn("interrupted, finishing the current request")
		}
		stop()
	}()
	return ctx, stop
}

// Exists reports whether path exists, any stat error other than not-exist is
// returned as is.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
