package app

import (
	"context"
	"fmt"

	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/games-aggregator/internal/clients/redis"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
	"github.com/yungbote/games-aggregator/internal/temporalx"
)

type Clients struct {
	RunBus   redis.RunEventBus
	Temporal temporalsdkclient.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	bus, err := redis.NewRunEventBus(ctx, log, redis.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Channel:  cfg.RedisChannel,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init redis run bus: %w", err)
	}

	// Temporal (nil when TEMPORAL_ADDRESS is unset)
	tc, err := temporalx.NewClient(log, cfg.Temporal)
	if err != nil {
		_ = bus.Close()
		return Clients{}, fmt.Errorf("init temporal client: %w", err)
	}

	return Clients{RunBus: bus, Temporal: tc}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.RunBus != nil {
		_ = c.RunBus.Close()
	}
}
