package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/USSTM/facility-portal/internal/config"
	"github.com/USSTM/facility-portal/internal/queue"
	"github.com/hibiken/asynq"
	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestQueue is a real Redis with the task queue, an inspector and a raw
// client on top. Session and audit stores share the same Redis.
type TestQueue struct {
	Queue     *queue.TaskQueue
	container *redis.RedisContainer
	Redis     *rdb.Client
	Inspector *asynq.Inspector
	Config    config.RedisConfig
}

func NewTestQueue(t *testing.T) *TestQueue {
	ctx := context.Background()

	redisContainer, err := redis.Run(ctx,
		"redis:7-alpine",
		testcontainers.WithReuseByName("facility-portal-test-redis"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForLog("Ready to accept connections").
					WithStartupTimeout(30*time.Second),
				wait.ForListeningPort("6379/tcp").
					WithStartupTimeout(30*time.Second),
			),
		),
	)
	require.NoError(t, err, "Failed to start Redis container")

	endpoint, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err, "Failed to get redis connection string")

	appConfig := config.RedisConfig{Addr: endpoint}

	taskQueue, err := queue.NewQueue(&appConfig)
	require.NoError(t, err, "Failed to create application queue wrapper")

	return &TestQueue{
		Queue:     taskQueue,
		container: redisContainer,
		Redis:     rdb.NewClient(&rdb.Options{Addr: endpoint}),
		Inspector: asynq.NewInspector(asynq.RedisClientOpt{Addr: endpoint}),
		Config:    appConfig,
	}
}

func (tq *TestQueue) Enqueue(taskType string, data interface{}) (*asynq.TaskInfo, error) {
	return tq.Queue.Enqueue(taskType, data)
}

func (tq *TestQueue) Cleanup(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := tq.Redis.FlushDB(ctx).Err(); err != nil {
		t.Logf("WARNING: failed to flush Redis between tests: %v", err)
	}
}

func (tq *TestQueue) Close() {
	if tq.Queue != nil {
		tq.Queue.Close()
	}
	if tq.Inspector != nil {
		tq.Inspector.Close()
	}
	if tq.Redis != nil {
		tq.Redis.Close()
	}
}
