package aggregate_source

import (
	"github.com/yungbote/games-aggregator/internal/aggregation/ingest"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

const JobType = "aggregate_source"

// Payload selects the source and, optionally, the batch size for one run.
type Payload struct {
	Source string `json:"source"`
	Chunk  int    `json:"chunk,omitempty"`
}

type Pipeline struct {
	log    *logger.Logger
	engine *ingest.Engine
}

func New(baseLog *logger.Logger, engine *ingest.Engine) *Pipeline {
	return &Pipeline{
		log:    baseLog.With("job", JobType),
		engine: engine,
	}
}

func (p *Pipeline) Type() string { return JobType }
