package domain

import (
	"github.com/yungbote/games-aggregator/internal/domain/catalog"
	"github.com/yungbote/games-aggregator/internal/domain/games"
	"github.com/yungbote/games-aggregator/internal/domain/jobs"
)

type (
	Game          = games.Game
	GameView      = games.View
	Company       = games.Company
	Category      = games.Category
	Genre         = games.Genre
	GameDeveloper = games.GameDeveloper
	GamePublisher = games.GamePublisher
	GameCategory  = games.GameCategory
	GameGenre     = games.GameGenre

	SteamApp      = catalog.SteamApp
	GogGame       = catalog.GogGame
	WikipediaGame = catalog.WikipediaGame
	PcgwGame      = catalog.PcgwGame

	JobRun   = jobs.JobRun
	RunEvent = jobs.RunEvent
)
