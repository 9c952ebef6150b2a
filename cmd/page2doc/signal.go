package main

import (
	"context"
	"os/signal"
)

// notifyContext returns a context canceled on the first shutdown signal. An
// interrupted batch stops handing out inputs and closes its browsers.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}
