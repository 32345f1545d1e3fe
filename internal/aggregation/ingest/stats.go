package ingest

import (
	"time"

	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
)

// Record outcomes, also used as metric labels.
const (
	OutcomeCreated         = "created"
	OutcomeMatched         = "matched"
	OutcomeLinkedPrimary   = "linked_primary"
	OutcomeLinkedSecondary = "linked_secondary"
	OutcomeUnlinked        = "unlinked"
	OutcomeRaced           = "raced"
	OutcomeSkippedInvalid  = "skipped_invalid"
	OutcomeSlugCollision   = "slug_collision"
)

// RunStats summarizes one Run invocation.
type RunStats struct {
	RunID  string       `json:"run_id"`
	Source sources.Kind `json:"source"`

	Batches int `json:"batches"`
	Scanned int `json:"scanned"`

	SkippedInvalid  int `json:"skipped_invalid"`
	SlugCollisions  int `json:"slug_collisions"`
	Created         int `json:"created"`
	Matched         int `json:"matched"`
	LinkedPrimary   int `json:"linked_primary"`
	LinkedSecondary int `json:"linked_secondary"`
	Unlinked        int `json:"unlinked"`
	Raced           int `json:"raced"`

	LastID     uint64    `json:"last_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func (s *RunStats) count(outcome string) {
	switch outcome {
	case OutcomeCreated:
		s.Created++
	case OutcomeMatched:
		s.Matched++
	case OutcomeLinkedPrimary:
		s.LinkedPrimary++
	case OutcomeLinkedSecondary:
		s.LinkedSecondary++
	case OutcomeUnlinked:
		s.Unlinked++
	case OutcomeRaced:
		s.Raced++
	case OutcomeSkippedInvalid:
		s.SkippedInvalid++
	case OutcomeSlugCollision:
		s.SlugCollisions++
	}
}

// Linked is the number of records consumed by this run.
func (s RunStats) Linked() int {
	return s.LinkedPrimary + s.LinkedSecondary
}

// DryRunReport is the per-source summary of a simulated run.
type DryRunReport struct {
	Source            sources.Kind `json:"source"`
	Scanned           int          `json:"scanned"`
	Candidates        int          `json:"candidates"`
	SkippedInvalid    int          `json:"skipped_invalid"`
	WouldLinkExisting int          `json:"would_link_existing"`
	WouldCreate       int          `json:"would_create_games"`
	MissingCompanies  int          `json:"unique_missing_companies"`
}
