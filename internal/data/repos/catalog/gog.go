package catalog

import (
	"gorm.io/gorm"

	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	types "github.com/yungbote/games-aggregator/internal/domain"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

type gogAdapter struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGogAdapter(db *gorm.DB, baseLog *logger.Logger) sources.Adapter {
	return &gogAdapter{db: db, log: baseLog.With("repo", "GogGameRepo")}
}

func (a *gogAdapter) Kind() sources.Kind { return sources.KindGog }

func (a *gogAdapter) Unconsumed(dbc dbctx.Context, afterID uint64, limit int) ([]sources.Record, error) {
	rows, err := unconsumed[types.GogGame](a.db, dbc, types.GogGame{}.TableName(), sources.KindGog, afterID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]sources.Record, 0, len(rows))
	for _, g := range rows {
		out = append(out, sources.Record{
			ID:                g.ID,
			Title:             g.Title,
			ReleaseDate:       g.ReleaseDateISO,
			ReleaseTimestamps: []int64{g.ReleaseDateTS, g.GlobalReleaseDateTS},
			Developers:        cloneNames(g.Developers),
			Publishers:        cloneNames(g.Publishers),
			Genres:            cloneNames(g.Genres),
			Type:              g.GameType,
		})
	}
	return out, nil
}

func (a *gogAdapter) TypeOf(dbc dbctx.Context, id uint64) (string, error) {
	return typeColumn(a.db, dbc, types.GogGame{}.TableName(), "game_type", id)
}
