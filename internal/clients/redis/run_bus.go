package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/games-aggregator/internal/domain"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

const DefaultChannel = "aggregator.runs"

type Config struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// RunEventBus fans job run state changes out to whoever is listening (dashboards, other
// replicas). Delivery is best effort.
type RunEventBus interface {
	Publish(ctx context.Context, ev types.RunEvent) error
	StartForwarder(ctx context.Context, onEvent func(ev types.RunEvent)) error
	Close() error
}

type runEventBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewRunEventBus connects to Redis. An empty address yields a bus that drops every event.
func NewRunEventBus(ctx context.Context, log *logger.Logger, cfg Config) (RunEventBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		log.Warn("REDIS_ADDR not set; run events disabled")
		return NopBus(), nil
	}
	ch := strings.TrimSpace(cfg.Channel)
	if ch == "" {
		ch = DefaultChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &runEventBus{
		log:     log.With("service", "RedisRunEventBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *runEventBus) Publish(ctx context.Context, ev types.RunEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis run bus not initialized")
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *runEventBus) StartForwarder(ctx context.Context, onEvent func(ev types.RunEvent)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis run bus not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var ev types.RunEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.log.Warn("bad redis run event payload", "error", err)
					continue
				}
				onEvent(ev)
			}
		}
	}()
	return nil
}

func (b *runEventBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

type nopBus struct{}

func NopBus() RunEventBus { return nopBus{} }

func (nopBus) Publish(context.Context, types.RunEvent) error { return nil }

func (nopBus) StartForwarder(ctx context.Context, onEvent func(ev types.RunEvent)) error {
	return nil
}

func (nopBus) Close() error { return nil }
