// Package resolver decides whether an incoming (name, year, companies) tuple is an existing
// canonical game or a new one.
package resolver

import (
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/games-aggregator/internal/aggregation/canonical"
	"github.com/yungbote/games-aggregator/internal/aggregation/dictionary"
	"github.com/yungbote/games-aggregator/internal/data/repos"
	types "github.com/yungbote/games-aggregator/internal/domain"
	domaingames "github.com/yungbote/games-aggregator/internal/domain/games"
	"github.com/yungbote/games-aggregator/internal/observability"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

var tracer = otel.Tracer("github.com/yungbote/games-aggregator/internal/aggregation/resolver")

// Input is the tuple an ingestion pipeline extracts from one source record.
type Input struct {
	Name        string
	ReleaseYear *int
	Developers  []string
	Publishers  []string
}

// Result is what Resolve did.
type Result struct {
	Game    *types.Game
	Created bool
	// Adopted: creation lost a slug race to a row that turned out to be a match.
	Adopted bool
}

// Decision is the read-only report produced by Simulate.
type Decision struct {
	Name               string   `json:"name"`
	MatchedGameID      uint64   `json:"matched_game_id,omitempty"`
	WouldCreateGame    bool     `json:"would_create_game"`
	ReleaseYearMatch   bool     `json:"release_year_match"`
	DeveloperOverlap   int      `json:"overlap_devs"`
	PublisherOverlap   int      `json:"overlap_pubs"`
	Score              int      `json:"score"`
	MissingCompanies   []string `json:"missing_companies"`
	ExistingCompanyIDs []uint64 `json:"existing_company_ids"`
}

type Resolver interface {
	FindOrCreate(dbc dbctx.Context, name string, releaseYear *int, developerNames, publisherNames []string) (*types.Game, error)
	Resolve(dbc dbctx.Context, in Input) (Result, error)
	Simulate(dbc dbctx.Context, name string, releaseYear *int, developerNames, publisherNames []string) (Decision, error)
}

type resolver struct {
	db        *gorm.DB
	log       *logger.Logger
	games     repos.GameRepo
	relations repos.RelationRepo
	dict      dictionary.Registry
	store     canonical.Store
}

func NewResolver(db *gorm.DB, log *logger.Logger, games repos.GameRepo, relations repos.RelationRepo, dict dictionary.Registry, store canonical.Store) Resolver {
	return &resolver{
		db:        db,
		log:       log.With("service", "Resolver"),
		games:     games,
		relations: relations,
		dict:      dict,
		store:     store,
	}
}

func (r *resolver) FindOrCreate(dbc dbctx.Context, name string, releaseYear *int, developerNames, publisherNames []string) (*types.Game, error) {
	res, err := r.Resolve(dbc, Input{Name: name, ReleaseYear: releaseYear, Developers: developerNames, Publishers: publisherNames})
	if err != nil {
		return nil, err
	}
	return res.Game, nil
}

func (r *resolver) Resolve(dbc dbctx.Context, in Input) (res Result, err error) {
	_, span := tracer.Start(dbc.Context(), "resolver.Resolve")
	defer func() {
		span.SetAttributes(attribute.Bool("created", res.Created))
		if res.Game != nil {
			span.SetAttributes(attribute.Int64("game_id", int64(res.Game.ID)))
		}
		observability.EndSpan(span, err)
	}()

	name := strings.TrimSpace(in.Name)
	devIDs, err := r.dict.GetOrCreateMany(dbc, domaingames.DictCompany, in.Developers)
	if err != nil {
		return Result{}, fmt.Errorf("developers: %w", err)
	}
	pubIDs, err := r.dict.GetOrCreateMany(dbc, domaingames.DictCompany, in.Publishers)
	if err != nil {
		return Result{}, fmt.Errorf("publishers: %w", err)
	}

	best, err := r.bestCandidate(dbc, name, in.ReleaseYear, devIDs, pubIDs)
	if err != nil {
		return Result{}, err
	}

	var game *types.Game
	switch {
	case best != nil:
		game = best.game
		if game.ReleaseYear == nil && in.ReleaseYear != nil {
			if err := r.games.UpdateFields(dbc, game.ID, map[string]interface{}{"release_year": *in.ReleaseYear}); err != nil {
				return Result{}, fmt.Errorf("backfill release year: %w", err)
			}
			y := *in.ReleaseYear
			game.ReleaseYear = &y
		}
	default:
		created, err := r.store.Create(dbc, name, in.ReleaseYear)
		if errors.Is(err, canonical.ErrSlugCollision) {
			adopted, aerr := r.adoptSlugHolder(dbc, name, in.ReleaseYear, devIDs, pubIDs)
			if aerr != nil {
				return Result{}, aerr
			}
			if adopted == nil {
				return Result{}, err
			}
			res.Adopted = true
			game = adopted
			break
		}
		if err != nil {
			return Result{}, err
		}
		res.Created = true
		game = created
	}

	if _, err := r.relations.Attach(dbc, domaingames.RelDevelopers, game.ID, devIDs); err != nil {
		return Result{}, fmt.Errorf("attach developers: %w", err)
	}
	if _, err := r.relations.Attach(dbc, domaingames.RelPublishers, game.ID, pubIDs); err != nil {
		return Result{}, fmt.Errorf("attach publishers: %w", err)
	}
	res.Game = game
	return res, nil
}

// adoptSlugHolder returns the row holding name's slug when it carries the same name and scores
// as a match. A concurrent creator of the same game is the usual cause.
func (r *resolver) adoptSlugHolder(dbc dbctx.Context, name string, year *int, devIDs, pubIDs []uint64) (*types.Game, error) {
	holder, err := r.games.GetBySlug(dbc, canonical.MakeSlug(name))
	if err != nil {
		return nil, fmt.Errorf("load slug holder: %w", err)
	}
	if holder == nil || holder.Name != name {
		return nil, nil
	}
	c, err := r.score(dbc, holder, year, devIDs, pubIDs)
	if err != nil {
		return nil, err
	}
	if !c.eligible() {
		return nil, nil
	}
	r.log.Debug("adopted slug holder", "game_id", holder.ID, "name", name)
	return holder, nil
}

func (r *resolver) Simulate(dbc dbctx.Context, name string, releaseYear *int, developerNames, publisherNames []string) (Decision, error) {
	name = strings.TrimSpace(name)
	devNames := dictionary.NormalizeNames(developerNames)
	pubNames := dictionary.NormalizeNames(publisherNames)

	all := dictionary.NormalizeNames(append(append([]string{}, devNames...), pubNames...))
	existing, err := r.dict.LookupExisting(dbc, domaingames.DictCompany, all)
	if err != nil {
		return Decision{}, fmt.Errorf("lookup companies: %w", err)
	}
	known := func(names []string) []uint64 {
		out := make([]uint64, 0, len(names))
		for _, n := range names {
			if id, ok := existing[n]; ok {
				out = append(out, id)
			}
		}
		return out
	}
	devIDs, pubIDs := known(devNames), known(pubNames)

	best, err := r.bestCandidate(dbc, name, releaseYear, devIDs, pubIDs)
	if err != nil {
		return Decision{}, err
	}

	d := Decision{
		Name:               name,
		WouldCreateGame:    best == nil,
		MissingCompanies:   []string{},
		ExistingCompanyIDs: known(all),
	}
	for _, n := range all {
		if _, ok := existing[n]; !ok {
			d.MissingCompanies = append(d.MissingCompanies, n)
		}
	}
	if best != nil {
		d.MatchedGameID = best.game.ID
		d.ReleaseYearMatch = best.yearMatch
		d.DeveloperOverlap = best.devOverlap
		d.PublisherOverlap = best.pubOverlap
		d.Score = best.score()
	}
	return d, nil
}

// bestCandidate is the matching step shared by Resolve and Simulate.
func (r *resolver) bestCandidate(dbc dbctx.Context, name string, year *int, devIDs, pubIDs []uint64) (*candidate, error) {
	rows, err := r.games.GetByName(dbc, name)
	if err != nil {
		return nil, fmt.Errorf("candidates for %q: %w", name, err)
	}
	scored := make([]candidate, 0, len(rows))
	for _, g := range rows {
		c, err := r.score(dbc, g, year, devIDs, pubIDs)
		if err != nil {
			return nil, err
		}
		scored = append(scored, c)
	}
	return pickBest(scored), nil
}

func (r *resolver) score(dbc dbctx.Context, g *types.Game, year *int, devIDs, pubIDs []uint64) (candidate, error) {
	c := candidate{game: g}
	c.yearMatch = year != nil && g.ReleaseYear != nil && *year == *g.ReleaseYear
	if len(devIDs) > 0 {
		have, err := r.relations.IDsFor(dbc, domaingames.RelDevelopers, g.ID)
		if err != nil {
			return c, fmt.Errorf("developers of %d: %w", g.ID, err)
		}
		c.devOverlap = overlap(have, devIDs)
	}
	if len(pubIDs) > 0 {
		have, err := r.relations.IDsFor(dbc, domaingames.RelPublishers, g.ID)
		if err != nil {
			return c, fmt.Errorf("publishers of %d: %w", g.ID, err)
		}
		c.pubOverlap = overlap(have, pubIDs)
	}
	return c, nil
}
