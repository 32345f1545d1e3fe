package catalog

import (
	"gorm.io/gorm"

	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	types "github.com/yungbote/games-aggregator/internal/domain"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

type steamAdapter struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSteamAdapter(db *gorm.DB, baseLog *logger.Logger) sources.Adapter {
	return &steamAdapter{db: db, log: baseLog.With("repo", "SteamAppRepo")}
}

func (a *steamAdapter) Kind() sources.Kind { return sources.KindSteam }

func (a *steamAdapter) Unconsumed(dbc dbctx.Context, afterID uint64, limit int) ([]sources.Record, error) {
	rows, err := unconsumed[types.SteamApp](a.db, dbc, types.SteamApp{}.TableName(), sources.KindSteam, afterID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]sources.Record, 0, len(rows))
	for _, app := range rows {
		out = append(out, sources.Record{
			ID:          app.ID,
			Title:       app.Name,
			ReleaseDate: app.ReleaseDate,
			Developers:  cloneNames(app.Developers),
			Publishers:  cloneNames(app.Publishers),
			Categories:  cloneNames(app.Categories),
			Genres:      cloneNames(app.Genres),
			Type:        app.DetailType,
		})
	}
	return out, nil
}

func (a *steamAdapter) TypeOf(dbc dbctx.Context, id uint64) (string, error) {
	return typeColumn(a.db, dbc, types.SteamApp{}.TableName(), "detail_type", id)
}
