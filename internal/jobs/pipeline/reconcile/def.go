package reconcile

import (
	"github.com/yungbote/games-aggregator/internal/aggregation/reconcile"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

const JobType = "reconcile"

const (
	OpDedupeSlugs     = "dedupe-slugs"
	OpMismatchedSlugs = "mismatched-slugs"
)

// Payload picks the repair. Without Confirm the job only records the plan.
type Payload struct {
	Operation string `json:"operation"`
	Confirm   bool   `json:"confirm"`
}

type Pipeline struct {
	log        *logger.Logger
	reconciler reconcile.Reconciler
}

func New(baseLog *logger.Logger, reconciler reconcile.Reconciler) *Pipeline {
	return &Pipeline{
		log:        baseLog.With("job", JobType),
		reconciler: reconciler,
	}
}

func (p *Pipeline) Type() string { return JobType }
