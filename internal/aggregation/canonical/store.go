package canonical

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	"github.com/yungbote/games-aggregator/internal/data/aggregates"
	"github.com/yungbote/games-aggregator/internal/data/repos"
	types "github.com/yungbote/games-aggregator/internal/domain"
	domainagg "github.com/yungbote/games-aggregator/internal/domain/aggregates"
	"github.com/yungbote/games-aggregator/internal/observability"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
	"github.com/yungbote/games-aggregator/internal/pkg/pointers"
)

var tracer = otel.Tracer("github.com/yungbote/games-aggregator/internal/aggregation/canonical")

var (
	// ErrSlugCollision means another row already holds the slug derived from the name.
	ErrSlugCollision = domainagg.NewError(domainagg.CodeConflict, "canonical.create", "slug already taken", nil)
	// ErrEmptySlug means the name has no sluggable characters.
	ErrEmptySlug = domainagg.NewError(domainagg.CodeValidation, "canonical.create", "name produces an empty slug", nil)
)

type LinkOutcome string

const (
	LinkPrimary   LinkOutcome = "primary"
	LinkSecondary LinkOutcome = "secondary"
	// LinkSkipped: every slot the kind may use is taken on this row.
	LinkSkipped LinkOutcome = "skipped"
	// LinkRaced: another row already references the record.
	LinkRaced LinkOutcome = "raced"
)

// LinkRequest describes one consumed source record.
type LinkRequest struct {
	Kind           sources.Kind
	SourceID       uint64
	ReleaseYear    *int
	AllowSecondary bool
}

type Store interface {
	Create(dbc dbctx.Context, name string, releaseYear *int) (*types.Game, error)
	Link(dbc dbctx.Context, gameID uint64, req LinkRequest) (LinkOutcome, error)
}

type store struct {
	db     *gorm.DB
	log    *logger.Logger
	games  repos.GameRepo
	lookup sources.TypeLookup
}

func NewStore(db *gorm.DB, log *logger.Logger, games repos.GameRepo, lookup sources.TypeLookup) Store {
	return &store{db: db, log: log.With("service", "CanonicalStore"), games: games, lookup: lookup}
}

func (s *store) Create(dbc dbctx.Context, name string, releaseYear *int) (*types.Game, error) {
	slug := MakeSlug(name)
	if slug == "" {
		return nil, fmt.Errorf("%w: %q", ErrEmptySlug, name)
	}
	g := &types.Game{Name: name, Slug: slug}
	if releaseYear != nil {
		g.ReleaseYear = pointers.Int(*releaseYear)
	}
	typ, err := ResolveType(dbc, g, s.lookup)
	if err != nil {
		return nil, fmt.Errorf("resolve type: %w", err)
	}
	g.Type = typ

	err = aggregates.Savepoint(dbc, s.db, func(tx *gorm.DB) error {
		return s.games.Create(dbc.WithTx(tx), g)
	})
	if aggregates.IsDuplicateKey(err) {
		return nil, fmt.Errorf("%w: %q", ErrSlugCollision, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return g, nil
}

// Link writes req into the first free slot the kind may use, then folds the release year and
// recomputes the type against the full set of links. The slot write runs in a savepoint so a
// unique violation leaves the caller's transaction usable.
func (s *store) Link(dbc dbctx.Context, gameID uint64, req LinkRequest) (outcome LinkOutcome, err error) {
	_, span := tracer.Start(dbc.Context(), "canonical.Link")
	span.SetAttributes(
		attribute.String("source", string(req.Kind)),
		attribute.Int64("source_id", int64(req.SourceID)),
		attribute.Int64("game_id", int64(gameID)),
	)
	defer func() {
		span.SetAttributes(attribute.String("outcome", string(outcome)))
		observability.EndSpan(span, err)
	}()

	g, err := s.games.GetByID(dbc, gameID)
	if err != nil {
		return "", fmt.Errorf("load game %d: %w", gameID, err)
	}
	if g == nil {
		return "", fmt.Errorf("game %d: not found", gameID)
	}

	column, outcome := s.pickSlot(g, req)
	if column == "" {
		return LinkSkipped, nil
	}

	var wrote bool
	err = aggregates.Savepoint(dbc, s.db, func(tx *gorm.DB) error {
		ok, err := s.games.SetSlotIfEmpty(dbc.WithTx(tx), g.ID, column, req.SourceID)
		wrote = ok
		return err
	})
	if aggregates.IsDuplicateKey(err) {
		return LinkRaced, nil
	}
	if err != nil {
		return "", fmt.Errorf("write %s: %w", column, err)
	}
	if !wrote {
		return LinkSkipped, nil
	}
	g.SetSlot(column, req.SourceID)

	updates := map[string]interface{}{}
	if year := FoldReleaseYear(g.ReleaseYear, req.ReleaseYear); year != nil && !pointers.EqualInt(year, g.ReleaseYear) {
		updates["release_year"] = *year
		g.ReleaseYear = year
	}
	typ, err := ResolveType(dbc, g, s.lookup)
	if err != nil {
		return "", fmt.Errorf("resolve type: %w", err)
	}
	if typ != g.Type {
		updates["type"] = typ
		g.Type = typ
	}
	if len(updates) > 0 {
		if err := s.games.UpdateFields(dbc, g.ID, updates); err != nil {
			return "", fmt.Errorf("update derived fields: %w", err)
		}
	}
	return outcome, nil
}

func (s *store) pickSlot(g *types.Game, req LinkRequest) (string, LinkOutcome) {
	if col := req.Kind.PrimaryColumn(); col != "" && g.Slot(col) == nil {
		return col, LinkPrimary
	}
	if !req.AllowSecondary {
		return "", LinkSkipped
	}
	if col := req.Kind.SecondaryColumn(); col != "" && g.Slot(col) == nil {
		return col, LinkSecondary
	}
	return "", LinkSkipped
}
