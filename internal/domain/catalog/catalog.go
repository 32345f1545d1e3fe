package catalog

import (
	"time"

	"gorm.io/datatypes"
)

// Source catalog rows. These tables are owned by the scrapers that fill them; the aggregator
// only reads them and migrates them itself in dev and test mode.

type SteamApp struct {
	ID          uint64                      `gorm:"primaryKey;autoIncrement" json:"id"`
	AppID       uint64                      `gorm:"column:appid;not null;index" json:"appid"`
	Name        string                      `gorm:"column:name;not null" json:"name"`
	ReleaseDate string                      `gorm:"column:release_date" json:"release_date,omitempty"`
	DetailType  string                      `gorm:"column:detail_type" json:"detail_type,omitempty"`
	Developers  datatypes.JSONSlice[string] `gorm:"column:developers" json:"developers"`
	Publishers  datatypes.JSONSlice[string] `gorm:"column:publishers" json:"publishers"`
	Categories  datatypes.JSONSlice[string] `gorm:"column:categories" json:"categories"`
	Genres      datatypes.JSONSlice[string] `gorm:"column:genres" json:"genres"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

func (SteamApp) TableName() string { return "steam_apps" }

type GogGame struct {
	ID                  uint64                      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title               string                      `gorm:"column:title" json:"title"`
	ReleaseDateISO      string                      `gorm:"column:release_date_iso" json:"release_date_iso,omitempty"`
	ReleaseDateTS       int64                       `gorm:"column:release_date_ts;not null;default:0" json:"release_date_ts,omitempty"`
	GlobalReleaseDateTS int64                       `gorm:"column:global_release_date_ts;not null;default:0" json:"global_release_date_ts,omitempty"`
	GameType            string                      `gorm:"column:game_type" json:"game_type,omitempty"`
	Developers          datatypes.JSONSlice[string] `gorm:"column:developers" json:"developers"`
	Publishers          datatypes.JSONSlice[string] `gorm:"column:publishers" json:"publishers"`
	Genres              datatypes.JSONSlice[string] `gorm:"column:genres" json:"genres"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
}

func (GogGame) TableName() string { return "gog_games" }

type WikipediaGame struct {
	ID          uint64                      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string                      `gorm:"column:title" json:"title"`
	CleanTitle  string                      `gorm:"column:clean_title" json:"clean_title"`
	ReleaseYear *int                        `gorm:"column:release_year" json:"release_year,omitempty"`
	ReleaseDate string                      `gorm:"column:release_date" json:"release_date,omitempty"`
	Developers  datatypes.JSONSlice[string] `gorm:"column:developers" json:"developers"`
	Publishers  datatypes.JSONSlice[string] `gorm:"column:publishers" json:"publishers"`
	Modes       datatypes.JSONSlice[string] `gorm:"column:modes" json:"modes"`
	Genres      datatypes.JSONSlice[string] `gorm:"column:genres" json:"genres"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

func (WikipediaGame) TableName() string { return "wikipedia_games" }

type PcgwGame struct {
	ID          uint64                      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string                      `gorm:"column:title" json:"title"`
	CleanTitle  *string                     `gorm:"column:clean_title" json:"clean_title,omitempty"`
	ReleaseYear *int                        `gorm:"column:release_year" json:"release_year,omitempty"`
	Developers  datatypes.JSONSlice[string] `gorm:"column:developers" json:"developers"`
	Publishers  datatypes.JSONSlice[string] `gorm:"column:publishers" json:"publishers"`
	Modes       datatypes.JSONSlice[string] `gorm:"column:modes" json:"modes"`
	Genres      datatypes.JSONSlice[string] `gorm:"column:genres" json:"genres"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

func (PcgwGame) TableName() string { return "pcgw_games" }

// All returns one zero value per catalog table, in migration order.
func All() []any {
	return []any{&SteamApp{}, &GogGame{}, &WikipediaGame{}, &PcgwGame{}}
}
