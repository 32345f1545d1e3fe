package reconcile

import (
	"errors"
	"fmt"

	jobrt "github.com/yungbote/games-aggregator/internal/jobs/runtime"
	pkgerrors "github.com/yungbote/games-aggregator/internal/pkg/errors"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	var in Payload
	if err := jc.Decode(&in); err != nil {
		return err
	}

	var run func() (any, error)
	switch in.Operation {
	case OpDedupeSlugs:
		run = func() (any, error) { return p.reconciler.DedupeBySlug(jc.Ctx, in.Confirm) }
	case OpMismatchedSlugs:
		run = func() (any, error) { return p.reconciler.DeleteMismatchedSlugs(jc.Ctx, in.Confirm) }
	default:
		return fmt.Errorf("unknown reconcile operation %q", in.Operation)
	}

	report, err := run()
	// An unconfirmed run is a plan, not a failure.
	if err != nil && !errors.Is(err, pkgerrors.ErrConfirmationRequired) {
		return err
	}
	jc.Succeed(report)
	return nil
}
