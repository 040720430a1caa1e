package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wholesale-phone/internal/config"
	"github.com/wholesale-phone/internal/logger"
	"github.com/wholesale-phone/internal/models"
	"github.com/wholesale-phone/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubService struct {
	name     string
	startErr error
	block    bool
	stopped  atomic.Bool
}

func (s *stubService) Name() string { return s.name }

func (s *stubService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return nil
	}
	return s.startErr
}

func (s *stubService) Stop(ctx context.Context) error {
	s.stopped.Store(true)
	return nil
}

func TestRunnerStopsAllServicesOnFailure(t *testing.T) {
	failing := &stubService{name: "failing", startErr: errors.New("boom")}
	blocking := &stubService{name: "blocking", block: true}

	err := NewRunner(failing, blocking).Run(context.Background(), time.Second, zap.NewNop().Sugar())
	if err == nil || err.Error() != "boom" {
		t.Fatalf("runner should return start error, got %v", err)
	}
	if !failing.stopped.Load() || !blocking.stopped.Load() {
		t.Fatalf("all services should be stopped")
	}
}

func TestRunnerCancelledContextReturnsNil(t *testing.T) {
	blocking := &stubService{name: "blocking", block: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewRunner(blocking).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancelled runner should return nil, got %v", err)
	}
	if !blocking.stopped.Load() {
		t.Fatalf("service should be stopped")
	}
}

func setupAppContainer(t *testing.T, cfg *config.Config) *provider.Container {
	t.Helper()
	dsn := fmt.Sprintf("file:app_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	c, err := provider.NewContainerWithDB(cfg, db)
	if err != nil {
		t.Fatalf("init container failed: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
	})
	return c
}

func TestBuildRunnerModes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger.L = zap.NewNop()
	cfg := &config.Config{
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: "0", Mode: "debug"},
		Session: config.SessionConfig{Secret: "app-test-secret", CookieName: "wp_session"},
	}
	container := setupAppContainer(t, cfg)

	runner, err := BuildRunner(cfg, container, ModeAll)
	if err != nil {
		t.Fatalf("build all runner failed: %v", err)
	}
	if len(runner.services) != 1 || runner.services[0].Name() != "http" {
		t.Fatalf("all mode without queue should only run http, got %d services", len(runner.services))
	}

	if _, err := BuildRunner(cfg, container, ModeWorker); err == nil {
		t.Fatalf("worker mode should fail when queue disabled")
	}
	if _, err := BuildRunner(cfg, nil, ModeAPI); err == nil {
		t.Fatalf("nil container should fail")
	}
}
