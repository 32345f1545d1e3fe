package games

// Join rows. Each table is unique on its pair; writes are unions.

type GameDeveloper struct {
	GameID    uint64 `gorm:"column:game_id;primaryKey;autoIncrement:false"`
	CompanyID uint64 `gorm:"column:company_id;primaryKey;autoIncrement:false;index"`
}

func (GameDeveloper) TableName() string { return "ga_game_developers" }

type GamePublisher struct {
	GameID    uint64 `gorm:"column:game_id;primaryKey;autoIncrement:false"`
	CompanyID uint64 `gorm:"column:company_id;primaryKey;autoIncrement:false;index"`
}

func (GamePublisher) TableName() string { return "ga_game_publishers" }

type GameCategory struct {
	GameID     uint64 `gorm:"column:game_id;primaryKey;autoIncrement:false"`
	CategoryID uint64 `gorm:"column:category_id;primaryKey;autoIncrement:false;index"`
}

func (GameCategory) TableName() string { return "ga_game_categories" }

type GameGenre struct {
	GameID  uint64 `gorm:"column:game_id;primaryKey;autoIncrement:false"`
	GenreID uint64 `gorm:"column:genre_id;primaryKey;autoIncrement:false;index"`
}

func (GameGenre) TableName() string { return "ga_game_genres" }

// Relation names one of the four association tables.
type Relation string

const (
	RelDevelopers Relation = "developers"
	RelPublishers Relation = "publishers"
	RelCategories Relation = "categories"
	RelGenres     Relation = "genres"
)

// Table and foreign column for the non-game side of a relation.
func (r Relation) Table() (table, column string) {
	switch r {
	case RelDevelopers:
		return GameDeveloper{}.TableName(), "company_id"
	case RelPublishers:
		return GamePublisher{}.TableName(), "company_id"
	case RelCategories:
		return GameCategory{}.TableName(), "category_id"
	case RelGenres:
		return GameGenre{}.TableName(), "genre_id"
	default:
		return "", ""
	}
}
