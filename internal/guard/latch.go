package guard

import (
	"context"
	"sync"
)

// evaluation latches the first redirect decided for a request. Later guard
// runs on the same request see the latch and do nothing.
type evaluation struct {
	mu       sync.Mutex
	redirect *Decision
}

type evaluationKey struct{}

func evaluationFor(ctx context.Context) (*evaluation, context.Context) {
	if ev, ok := ctx.Value(evaluationKey{}).(*evaluation); ok {
		return ev, ctx
	}
	ev := &evaluation{}
	return ev, context.WithValue(ctx, evaluationKey{}, ev)
}

// latch records d and reports whether this call was the one that committed.
func (e *evaluation) latch(d Decision) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.redirect != nil {
		return false
	}
	e.redirect = &d
	return true
}

func (e *evaluation) latched() (Decision, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.redirect == nil {
		return Decision{}, false
	}
	return *e.redirect, true
}
