package catalog

import (
	"gorm.io/gorm"

	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	types "github.com/yungbote/games-aggregator/internal/domain"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

type wikipediaAdapter struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWikipediaAdapter(db *gorm.DB, baseLog *logger.Logger) sources.Adapter {
	return &wikipediaAdapter{db: db, log: baseLog.With("repo", "WikipediaGameRepo")}
}

func (a *wikipediaAdapter) Kind() sources.Kind { return sources.KindWikipedia }

func (a *wikipediaAdapter) Unconsumed(dbc dbctx.Context, afterID uint64, limit int) ([]sources.Record, error) {
	rows, err := unconsumed[types.WikipediaGame](a.db, dbc, types.WikipediaGame{}.TableName(), sources.KindWikipedia, afterID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]sources.Record, 0, len(rows))
	for _, g := range rows {
		clean := g.CleanTitle
		out = append(out, sources.Record{
			ID:          g.ID,
			Title:       g.Title,
			CleanTitle:  &clean,
			ReleaseYear: g.ReleaseYear,
			ReleaseDate: g.ReleaseDate,
			Developers:  cloneNames(g.Developers),
			Publishers:  cloneNames(g.Publishers),
			Categories:  cloneNames(g.Modes),
			Genres:      cloneNames(g.Genres),
		})
	}
	return out, nil
}

// Wikipedia carries no classification.
func (a *wikipediaAdapter) TypeOf(dbc dbctx.Context, id uint64) (string, error) {
	return "", nil
}
