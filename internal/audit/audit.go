package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/USSTM/facility-portal/internal/session"
	"github.com/google/uuid"
)

// DefaultCapacity bounds the audit log; older entries are dropped first.
const DefaultCapacity = 1000

var ErrNoActor = errors.New("no session to attribute the audit event to")

// Event is what callers report.
type Event struct {
	Action      string
	Entity      string
	EntityID    string
	Description string
}

// Record is one stored audit entry, newest first in the log.
type Record struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	UserID      string `json:"userId"`
	Role        string `json:"role"`
	Portal      string `json:"portal"`
	VendorID    string `json:"vendorId,omitempty"`
	Action      string `json:"action"`
	Entity      string `json:"entity"`
	EntityID    string `json:"entityId,omitempty"`
	Description string `json:"description"`
}

// Log is a bounded, newest-first sequence of records.
type Log interface {
	Prepend(ctx context.Context, rec Record) error
	List(ctx context.Context, limit int) ([]Record, error)
}

// Sink is where the notifier hands records off to.
type Sink interface {
	Write(ctx context.Context, rec Record) error
}

// Result reports what happened to one event. Callers may ignore it.
type Result struct {
	Record  *Record
	Dropped bool
	Err     error
}

func (r Result) Written() bool {
	return !r.Dropped && r.Record != nil
}

// Notifier is a best-effort audit recorder: Log never panics and never
// returns an error to act on, it may silently drop events.
type Notifier struct {
	sink  Sink
	now   func() time.Time
	newID func() string
}

func NewNotifier(sink Sink) *Notifier {
	return &Notifier{
		sink:  sink,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// Log records ev against the session in ctx. Without a session nothing is
// written. Failures are reported in the Result only; they are not fed back
// into the audit log.
func (n *Notifier) Log(ctx context.Context, ev Event) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = Result{Dropped: true, Err: fmt.Errorf("audit: %v", p)}
		}
	}()

	if n == nil || n.sink == nil {
		return Result{Dropped: true}
	}

	s, ok := session.FromContext(ctx)
	if !ok {
		return Result{Dropped: true, Err: ErrNoActor}
	}

	rec := Record{
		ID:          n.newID(),
		Timestamp:   n.now().UTC().Format(time.RFC3339Nano),
		UserID:      s.UserID,
		Role:        string(s.Role),
		Portal:      string(s.Portal),
		VendorID:    s.VendorID,
		Action:      ev.Action,
		Entity:      ev.Entity,
		EntityID:    ev.EntityID,
		Description: ev.Description,
	}

	if err := n.sink.Write(ctx, rec); err != nil {
		return Result{Dropped: true, Err: err}
	}
	return Result{Record: &rec}
}

// Direct writes records straight into a Log.
type Direct struct {
	Log Log
}

func (d Direct) Write(ctx context.Context, rec Record) error {
	return d.Log.Prepend(ctx, rec)
}
