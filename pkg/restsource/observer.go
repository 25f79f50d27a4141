package restsource

import (
	"context"
	"time"
)

// Exchange summarizes one dispatched request.
type Exchange struct {
	Resource   string
	Request    Request
	StatusCode int
	Err        error
	// Probe marks the existence lookup a Create performs before deciding its verb.
	Probe   bool
	Elapsed time.Duration
}

// Succeeded reports whether the transport returned a 2xx response.
func (e Exchange) Succeeded() bool {
	return e.Err == nil && e.StatusCode >= 200 && e.StatusCode < 300
}

// Observer is notified after every dispatch. Observers cannot change results;
// their errors are logged and dropped.
type Observer interface {
	Observe(ctx context.Context, ex Exchange) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ex Exchange) error

func (f ObserverFunc) Observe(ctx context.Context, ex Exchange) error { return f(ctx, ex) }
