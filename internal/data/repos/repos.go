package repos

import (
	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	"github.com/yungbote/games-aggregator/internal/data/repos/catalog"
	"github.com/yungbote/games-aggregator/internal/data/repos/games"
	"github.com/yungbote/games-aggregator/internal/data/repos/jobs"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
	"gorm.io/gorm"
)

type GameRepo = games.GameRepo
type DictionaryRepo = games.DictionaryRepo
type RelationRepo = games.RelationRepo
type SlugGroup = games.SlugGroup

type JobRunRepo = jobs.JobRunRepo

// Repos bundles every table repo over one connection.
type Repos struct {
	Games        GameRepo
	Dictionaries DictionaryRepo
	Relations    RelationRepo
	JobRuns      JobRunRepo
	Sources      *sources.Registry
}

func New(db *gorm.DB, log *logger.Logger) *Repos {
	return &Repos{
		Games:        games.NewGameRepo(db, log),
		Dictionaries: games.NewDictionaryRepo(db, log),
		Relations:    games.NewRelationRepo(db, log),
		JobRuns:      jobs.NewJobRunRepo(db, log),
		Sources: sources.NewRegistry(
			catalog.NewSteamAdapter(db, log),
			catalog.NewGogAdapter(db, log),
			catalog.NewWikipediaAdapter(db, log),
			catalog.NewPcgwAdapter(db, log),
		),
	}
}
