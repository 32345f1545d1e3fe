package catalog

import (
	"gorm.io/gorm"

	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	types "github.com/yungbote/games-aggregator/internal/domain"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

type pcgwAdapter struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPcgwAdapter(db *gorm.DB, baseLog *logger.Logger) sources.Adapter {
	return &pcgwAdapter{db: db, log: baseLog.With("repo", "PcgwGameRepo")}
}

func (a *pcgwAdapter) Kind() sources.Kind { return sources.KindPcgamingwiki }

func (a *pcgwAdapter) Unconsumed(dbc dbctx.Context, afterID uint64, limit int) ([]sources.Record, error) {
	rows, err := unconsumed[types.PcgwGame](a.db, dbc, types.PcgwGame{}.TableName(), sources.KindPcgamingwiki, afterID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]sources.Record, 0, len(rows))
	for _, g := range rows {
		out = append(out, sources.Record{
			ID:          g.ID,
			Title:       g.Title,
			CleanTitle:  g.CleanTitle,
			ReleaseYear: g.ReleaseYear,
			Developers:  cloneNames(g.Developers),
			Publishers:  cloneNames(g.Publishers),
			Categories:  cloneNames(g.Modes),
			Genres:      cloneNames(g.Genres),
		})
	}
	return out, nil
}

func (a *pcgwAdapter) TypeOf(dbc dbctx.Context, id uint64) (string, error) {
	return "", nil
}
