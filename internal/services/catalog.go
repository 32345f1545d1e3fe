package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/games-aggregator/internal/aggregation/ingest"
	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	"github.com/yungbote/games-aggregator/internal/data/repos"
	types "github.com/yungbote/games-aggregator/internal/domain"
	domaingames "github.com/yungbote/games-aggregator/internal/domain/games"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/games-aggregator/internal/pkg/errors"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

// CatalogService is the read side of the canonical catalog plus the dry-run surface.
type CatalogService interface {
	// GetView returns the game holding slug with its slots and associations.
	GetView(dbc dbctx.Context, slug string) (*types.GameView, error)
	// GetBySource returns the game whose primary or secondary slot for kind holds sourceID.
	GetBySource(dbc dbctx.Context, kind sources.Kind, sourceID uint64) (*types.GameView, error)
	Count(dbc dbctx.Context) (int64, error)
	DryRun(ctx context.Context, kind sources.Kind, limit int) (ingest.DryRunReport, error)
}

type catalogService struct {
	log    *logger.Logger
	repos  *repos.Repos
	engine *ingest.Engine
}

func NewCatalogService(baseLog *logger.Logger, r *repos.Repos, engine *ingest.Engine) CatalogService {
	return &catalogService{
		log:    baseLog.With("service", "CatalogService"),
		repos:  r,
		engine: engine,
	}
}

func (s *catalogService) GetView(dbc dbctx.Context, slug string) (*types.GameView, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("slug: %w", pkgerrors.ErrInvalidArgument)
	}
	g, err := s.repos.Games.GetBySlug(dbc, slug)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("game %q: %w", slug, pkgerrors.ErrNotFound)
	}
	return s.view(dbc, g)
}

func (s *catalogService) GetBySource(dbc dbctx.Context, kind sources.Kind, sourceID uint64) (*types.GameView, error) {
	if kind.PrimaryColumn() == "" || sourceID == 0 {
		return nil, fmt.Errorf("source %s/%d: %w", kind, sourceID, pkgerrors.ErrInvalidArgument)
	}
	for _, col := range []string{kind.PrimaryColumn(), kind.SecondaryColumn()} {
		if col == "" {
			continue
		}
		g, err := s.repos.Games.GetBySlot(dbc, col, sourceID)
		if err != nil {
			return nil, err
		}
		if g != nil {
			return s.view(dbc, g)
		}
	}
	return nil, fmt.Errorf("no game links %s/%d: %w", kind, sourceID, pkgerrors.ErrNotFound)
}

func (s *catalogService) view(dbc dbctx.Context, g *types.Game) (*types.GameView, error) {
	view := &types.GameView{Game: *g}
	for _, rel := range []struct {
		rel domaingames.Relation
		dst *[]string
	}{
		{domaingames.RelDevelopers, &view.Developers},
		{domaingames.RelPublishers, &view.Publishers},
		{domaingames.RelCategories, &view.Categories},
		{domaingames.RelGenres, &view.Genres},
	} {
		names, err := s.repos.Relations.NamesFor(dbc, rel.rel, g.ID)
		if err != nil {
			return nil, fmt.Errorf("load %s for game %d: %w", rel.rel, g.ID, err)
		}
		if names == nil {
			names = []string{}
		}
		*rel.dst = names
	}
	return view, nil
}

func (s *catalogService) Count(dbc dbctx.Context) (int64, error) {
	return s.repos.Games.Count(dbc)
}

func (s *catalogService) DryRun(ctx context.Context, kind sources.Kind, limit int) (ingest.DryRunReport, error) {
	p, err := s.engine.Pipeline(kind)
	if err != nil {
		return ingest.DryRunReport{}, err
	}
	return p.DryRun(ctx, limit)
}
