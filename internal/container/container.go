package container

import (
	"context"

	"github.com/USSTM/facility-portal/internal/accounts"
	"github.com/USSTM/facility-portal/internal/api"
	"github.com/USSTM/facility-portal/internal/audit"
	"github.com/USSTM/facility-portal/internal/auth"
	"github.com/USSTM/facility-portal/internal/aws"
	"github.com/USSTM/facility-portal/internal/config"
	"github.com/USSTM/facility-portal/internal/database"
	"github.com/USSTM/facility-portal/internal/guard"
	"github.com/USSTM/facility-portal/internal/logging"
	"github.com/USSTM/facility-portal/internal/permissions"
	"github.com/USSTM/facility-portal/internal/queue"
	"github.com/USSTM/facility-portal/internal/session"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	Config        *config.Config
	Database      *database.Database
	Queue         *queue.TaskQueue
	RedisClient   *redis.Client
	Sessions      *session.RedisStore
	AuditLog      *audit.RedisLog
	AuditBucket   *aws.AuditBucket
	AuthService   *auth.AuthService
	Authenticator *auth.Authenticator
	Guard         *guard.Guard
	Server        *api.Server
	Worker        *queue.Worker
}

func New(cfg config.Config) (*Container, error) {
	ctx := context.Background()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	// asynq manages its own connection; this client holds sessions and the
	// audit log.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	sessions := session.NewRedisStore(redisClient)
	auditLog := audit.NewRedisLog(redisClient, cfg.Audit.Capacity)

	c := &Container{
		Config:      &cfg,
		Database:    db,
		RedisClient: redisClient,
		Sessions:    sessions,
		AuditLog:    auditLog,
	}

	var sink audit.Sink = audit.Direct{Log: auditLog}
	if cfg.Audit.Queued {
		taskQueue, err := queue.NewQueue(&cfg.Redis)
		if err != nil {
			c.Cleanup()
			return nil, err
		}
		c.Queue = taskQueue
		sink = audit.NewQueued(taskQueue)
	}
	notifier := audit.NewNotifier(sink)

	jwtService, err := auth.NewJWTService([]byte(cfg.JWT.SigningKey), cfg.JWT.Issuer, cfg.JWT.Expiry)
	if err != nil {
		c.Cleanup()
		return nil, err
	}

	templates := permissions.DefaultTemplates()
	if cfg.Permissions.TemplatesFile != "" {
		if templates, err = permissions.LoadTemplates(cfg.Permissions.TemplatesFile); err != nil {
			c.Cleanup()
			return nil, err
		}
		logging.Info("Loaded permission templates", "file", cfg.Permissions.TemplatesFile, "count", len(templates))
	}

	c.AuthService = auth.NewAuthService(accounts.NewRepository(db.Queries()), sessions, jwtService, templates, notifier, cfg.Session)
	c.Authenticator = auth.NewAuthenticator(jwtService, sessions, cfg.Session.CookieName, cfg.Session.CookieSecure)

	alerts := guard.CookieAlertSink{Secure: cfg.Session.CookieSecure}
	c.Guard = guard.New(c.Authenticator, alerts, guard.HTTPNavigator{}, notifier)

	bucket, err := aws.NewAuditBucket(ctx, cfg.AWS)
	if err != nil {
		c.Cleanup()
		return nil, err
	}
	c.AuditBucket = bucket

	// localstack-specific config (buckets are not managed by app in prod)
	if cfg.AWS.EndpointURL != "" {
		if err := bucket.EnsureBucket(ctx); err != nil {
			logging.Info("S3 bucket creation attempted", "bucket", bucket.Name(), "result", err)
		}
	}

	c.Worker = queue.NewWorker(&cfg.Redis, auditLog)

	c.Server = api.NewServer(c.AuthService, c.Authenticator, alerts, auditLog, map[string]api.HealthCheck{
		"database": db.Ping,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	})

	logging.Info("Connected to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port)

	return c, nil
}

func (c *Container) Cleanup() {
	if c.Queue != nil {
		c.Queue.Close()
		logging.Info("Queue client closed")
	}
	if c.Worker != nil {
		c.Worker.Close()
		logging.Info("Worker closed")
	}
	if c.RedisClient != nil {
		c.RedisClient.Close()
		logging.Info("Redis client closed")
	}
	if c.Database != nil {
		c.Database.Close()
		logging.Info("Database connection closed")
	}
}
