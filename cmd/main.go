package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	portalapi "github.com/USSTM/facility-portal/api"
	"github.com/USSTM/facility-portal/internal/api"
	"github.com/USSTM/facility-portal/internal/config"
	"github.com/USSTM/facility-portal/internal/container"
	"github.com/USSTM/facility-portal/internal/logging"
)

func main() {
	cfg := config.Load()

	if err := logging.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	c, err := container.New(*cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer c.Cleanup()

	// Get the embedded OpenAPI spec
	spec, err := portalapi.GetSwagger()
	if err != nil {
		log.Fatalf("Failed to load OpenAPI spec: %v", err)
	}

	handler := api.NewRouter(api.RouterConfig{
		Server:   c.Server,
		Sessions: c.Authenticator,
		Guard:    c.Guard,
		Spec:     spec,
		CORS:     &cfg.CORS,
	})

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Server.Port)
	s := &http.Server{
		Handler:           handler,
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Server starting", "addr", addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		logging.Info("Shutting down server...")
	case err := <-errCh:
		logging.Error("Server failed", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err)
	}
}
