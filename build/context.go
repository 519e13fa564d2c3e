package build

import (
	"context"
	"sync"
)

// CompilationContext is the handle through which a caller learns that the unit
// it requested is terminal.  It is completed exactly once: when the unit is
// compiled, was already compiled, or failed.  Contexts derived for requests
// issued during compile-time execution record the requesting unit and the
// context they were derived from.
type CompilationContext struct {
	// requester is the unit whose compile-time execution issued the request.
	// It is empty for top-level requests.
	requester string

	// parent is the context the requesting unit was itself compiled under.
	parent *CompilationContext

	once sync.Once
	done chan struct{}
	err  error
}

// NewCompilationContext creates a context for a top-level request.
func NewCompilationContext() *CompilationContext {
	return &CompilationContext{done: make(chan struct{})}
}

// Derive creates a context for a request issued by unit's compile-time
// execution.
func (cc *CompilationContext) Derive(unit string) *CompilationContext {
	return &CompilationContext{
		requester: unit,
		parent:    cc,
		done:      make(chan struct{}),
	}
}

// Complete marks the request as terminal with the given outcome.  Only the
// first call has any effect.
func (cc *CompilationContext) Complete(err error) {
	cc.once.Do(func() {
		cc.err = err
		close(cc.done)
	})
}

// Done returns a channel which is closed once the request is terminal.
func (cc *CompilationContext) Done() <-chan struct{} {
	return cc.done
}

// Err returns the outcome of the request.  It must only be called after Done
// is closed.
func (cc *CompilationContext) Err() error {
	return cc.err
}

// Wait blocks until the request is terminal or ctx is cancelled.
func (cc *CompilationContext) Wait(ctx context.Context) error {
	select {
	case <-cc.done:
		return cc.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Requester returns the unit that issued the request or an empty string for
// top-level requests.
func (cc *CompilationContext) Requester() string {
	return cc.requester
}

// Parent returns the context this context was derived from.
func (cc *CompilationContext) Parent() *CompilationContext {
	return cc.parent
}

// IsTopLevel returns whether the request did not originate from compile-time
// execution.
func (cc *CompilationContext) IsTopLevel() bool {
	return cc.requester == ""
}

// RequestedBy returns whether the request originates, transitively, from the
// compile-time execution of unit.
func (cc *CompilationContext) RequestedBy(unit string) bool {
	for c := cc; c != nil; c = c.parent {
		if c.requester == unit {
			return true
		}
	}

	return false
}
