package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TypeAuditRecord is the task type the worker persists into the Log.
const TypeAuditRecord = "audit:record"

type enqueuer interface {
	Enqueue(taskType string, data interface{}) (*asynq.TaskInfo, error)
}

// Queued hands records to the task queue instead of writing them inline.
type Queued struct {
	queue enqueuer
}

func NewQueued(q enqueuer) *Queued {
	return &Queued{queue: q}
}

func (q *Queued) Write(ctx context.Context, rec Record) error {
	if _, err := q.queue.Enqueue(TypeAuditRecord, rec); err != nil {
		return fmt.Errorf("enqueueing audit record: %w", err)
	}
	return nil
}

// DecodeTask parses an audit:record payload.
func DecodeTask(payload []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return Record{}, err
	}
	if rec.ID == "" {
		return Record{}, fmt.Errorf("audit task without record id")
	}
	return rec, nil
}
