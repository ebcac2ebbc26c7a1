package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/USSTM/facility-portal/internal/audit"
	"github.com/USSTM/facility-portal/internal/config"
	"github.com/USSTM/facility-portal/internal/logging"
	"github.com/hibiken/asynq"
)

type TaskQueue struct {
	client *asynq.Client
}

func redisOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewQueue(cfg *config.RedisConfig) (*TaskQueue, error) {
	client := asynq.NewClient(redisOpt(cfg))

	// Activate and test the connection
	if err := client.Ping(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis queue: %w", err)
	}

	logging.Info("Connected to Redis task queue")

	return &TaskQueue{client: client}, nil
}

func (q *TaskQueue) Enqueue(taskType string, data interface{}) (*asynq.TaskInfo, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return q.client.Enqueue(asynq.NewTask(taskType, payload), asynq.Queue("audit"), asynq.MaxRetry(5))
}

func (q *TaskQueue) Close() error {
	return q.client.Close()
}

// Worker drains audit tasks into the audit log.
type Worker struct {
	server *asynq.Server
	log    audit.Log
}

func NewWorker(cfg *config.RedisConfig, log audit.Log) *Worker {
	server := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			// one writer keeps the log in enqueue order
			Concurrency: 1,
			Queues: map[string]int{
				"audit":   1,
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logging.Error("process task failed", "type", task.Type(), "payload", string(task.Payload()), "error", err)
			}),
		},
	)

	return &Worker{
		server: server,
		log:    log,
	}
}

// Mux wires the task handlers. Exposed so tests can drive handlers directly.
func (w *Worker) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(audit.TypeAuditRecord, w.HandleAuditRecord)
	return mux
}

func (w *Worker) Start() error {
	return w.server.Start(w.Mux())
}

func (w *Worker) Close() {
	if w.server != nil {
		w.server.Shutdown()
	}
}

func (w *Worker) HandleAuditRecord(ctx context.Context, t *asynq.Task) error {
	rec, err := audit.DecodeTask(t.Payload())
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := w.log.Prepend(ctx, rec); err != nil {
		return fmt.Errorf("writing audit record %s: %w", rec.ID, err)
	}
	return nil
}
