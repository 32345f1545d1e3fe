package games

import "time"

// Company, Category and Genre are insert-only dictionaries keyed by normalized name.

type Company struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Company) TableName() string { return "ga_companies" }

type Category struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Category) TableName() string { return "ga_categories" }

type Genre struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Genre) TableName() string { return "ga_genres" }

// DictionaryKind selects one of the dictionaries.
type DictionaryKind string

const (
	DictCompany  DictionaryKind = "company"
	DictCategory DictionaryKind = "category"
	DictGenre    DictionaryKind = "genre"
)

// Table returns the dictionary's table name.
func (k DictionaryKind) Table() string {
	switch k {
	case DictCompany:
		return Company{}.TableName()
	case DictCategory:
		return Category{}.TableName()
	case DictGenre:
		return Genre{}.TableName()
	default:
		return ""
	}
}
