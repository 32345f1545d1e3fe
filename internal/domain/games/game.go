package games

import "time"

// DefaultType is the type of a canonical game no linked source classifies.
const DefaultType = "game"

// Game is the canonical, deduplicated catalog entry. Each source kind owns one nullable
// unique slot; Steam additionally owns SecondSteamAppID.
type Game struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"column:name;not null;index" json:"name"`
	Slug        string `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	ReleaseYear *int   `gorm:"column:release_year" json:"release_year,omitempty"`
	Type        string `gorm:"column:type;not null;default:game" json:"type"`

	SteamAppID         *uint64 `gorm:"column:steam_app_id;uniqueIndex" json:"steam_app_id,omitempty"`
	SecondSteamAppID   *uint64 `gorm:"column:second_steam_app_id;uniqueIndex" json:"second_steam_app_id,omitempty"`
	GogGameID          *uint64 `gorm:"column:gog_game_id;uniqueIndex" json:"gog_game_id,omitempty"`
	WikipediaGameID    *uint64 `gorm:"column:wikipedia_game_id;uniqueIndex" json:"wikipedia_game_id,omitempty"`
	PcgamingwikiGameID *uint64 `gorm:"column:pcgamingwiki_game_id;uniqueIndex" json:"pcgamingwiki_game_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Game) TableName() string { return "ga_games" }

// View is a canonical game with its resolved associations.
type View struct {
	Game
	Developers []string `json:"developers"`
	Publishers []string `json:"publishers"`
	Categories []string `json:"categories"`
	Genres     []string `json:"genres"`
}
