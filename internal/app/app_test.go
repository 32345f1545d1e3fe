package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aggregator.yaml")
	yaml := "sources:\n  gog:\n    batch_size: 50\n  pcgw:\n    enabled: false\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("AGGREGATOR_CONFIG_FILE", path)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JOB_RETRY_DELAY", "45s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DBDriver != "sqlite" || cfg.JobRetryDelay != 45*time.Second || cfg.JobMaxAttempts != 3 {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.Temporal.TaskQueue != "games-aggregator" {
		t.Fatalf("nested temporal config not parsed: %+v", cfg.Temporal)
	}
	if got := cfg.BatchSizes(); !reflect.DeepEqual(got, map[sources.Kind]int{sources.KindGog: 50}) {
		t.Fatalf("BatchSizes = %v", got)
	}
	want := []sources.Kind{sources.KindSteam, sources.KindGog, sources.KindWikipedia}
	if got := cfg.EnabledSources(); !reflect.DeepEqual(got, want) {
		t.Fatalf("EnabledSources = %v, want %v", got, want)
	}
}

func TestLoadConfigRejectsUnknownSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aggregator.yaml")
	if err := os.WriteFile(path, []byte("sources:\n  itch:\n    batch_size: 10\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("AGGREGATOR_CONFIG_FILE", path)
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}

func TestNewWithConfigLocalWorker(t *testing.T) {
	t.Setenv("AGGREGATOR_CONFIG_FILE", "")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg.DBDriver = "sqlite"
	cfg.DBDSN = "file:" + filepath.Join(t.TempDir(), "app.db")
	cfg.MigrateCatalogs = true
	cfg.MetricsEnabled = false
	cfg.WorkerPoll = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a, err := NewWithConfig(ctx, logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	defer a.Close()

	if a.Services.Worker == nil || a.Services.Temporal != nil {
		t.Fatalf("expected local worker without TEMPORAL_ADDRESS")
	}
	if got := a.Services.Registry.Types(); !reflect.DeepEqual(got, []string{"aggregate_source", "reconcile"}) {
		t.Fatalf("registered types = %v", got)
	}
	if err := a.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	rec := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
}
