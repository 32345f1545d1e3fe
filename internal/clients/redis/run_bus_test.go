package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/games-aggregator/internal/domain"
	"github.com/yungbote/games-aggregator/internal/domain/jobs"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

func TestNewRunEventBusWithoutAddr(t *testing.T) {
	bus, err := NewRunEventBus(context.Background(), logger.Nop(), Config{Addr: "  "})
	if err != nil {
		t.Fatalf("NewRunEventBus: %v", err)
	}
	if _, ok := bus.(nopBus); !ok {
		t.Fatalf("expected nop bus, got %T", bus)
	}
	if err := bus.Publish(context.Background(), types.RunEvent{Kind: jobs.RunEventStarted}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := bus.StartForwarder(context.Background(), func(types.RunEvent) {}); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNewRunEventBusRequiresLogger(t *testing.T) {
	if _, err := NewRunEventBus(context.Background(), nil, Config{}); err == nil {
		t.Fatalf("expected error for nil logger")
	}
}

// Round trip against a live server; set TEST_REDIS_ADDR to run it.
func TestRunEventBusRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bus, err := NewRunEventBus(ctx, logger.Nop(), Config{Addr: addr, Channel: "aggregator.test." + uuid.NewString()})
	if err != nil {
		t.Fatalf("NewRunEventBus: %v", err)
	}
	defer bus.Close()

	got := make(chan types.RunEvent, 1)
	if err := bus.StartForwarder(ctx, func(ev types.RunEvent) { got <- ev }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}

	want := types.RunEvent{JobID: uuid.New(), JobType: "aggregate_source", Kind: jobs.RunEventSucceeded, Attempt: 2}
	if err := bus.Publish(ctx, want); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case ev := <-got:
		if ev.JobID != want.JobID || ev.Kind != want.Kind || ev.Attempt != 2 {
			t.Fatalf("event = %+v, want %+v", ev, want)
		}
	case <-ctx.Done():
		t.Fatalf("timed out waiting for event")
	}
}
