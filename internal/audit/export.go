package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

type objectPutter interface {
	PutObject(ctx context.Context, key string, body io.Reader, contentType string) error
}

// Exporter writes a JSON snapshot of the audit log to object storage.
type Exporter struct {
	log    Log
	bucket objectPutter
	now    func() time.Time
}

func NewExporter(log Log, bucket objectPutter) *Exporter {
	return &Exporter{log: log, bucket: bucket, now: time.Now}
}

// Export uploads every retained record and returns the object key used.
func (e *Exporter) Export(ctx context.Context) (string, int, error) {
	records, err := e.log.List(ctx, 0)
	if err != nil {
		return "", 0, fmt.Errorf("listing audit records: %w", err)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return "", 0, fmt.Errorf("encoding audit snapshot: %w", err)
	}

	key := fmt.Sprintf("audit/%s.json", e.now().UTC().Format("20060102T150405Z"))
	if err := e.bucket.PutObject(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return "", 0, err
	}
	return key, len(records), nil
}
