package games

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/games-aggregator/internal/data/aggregates"
	types "github.com/yungbote/games-aggregator/internal/domain"
	domaingames "github.com/yungbote/games-aggregator/internal/domain/games"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

// DictionaryRepo reads and appends the company, category and genre dictionaries.
type DictionaryRepo interface {
	GetByNames(dbc dbctx.Context, kind domaingames.DictionaryKind, names []string) (map[string]uint64, error)
	CreateIgnoreDuplicates(dbc dbctx.Context, kind domaingames.DictionaryKind, names []string) (int, error)
}

type dictionaryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDictionaryRepo(db *gorm.DB, baseLog *logger.Logger) DictionaryRepo {
	return &dictionaryRepo{db: db, log: baseLog.With("repo", "DictionaryRepo")}
}

type idName struct {
	ID   uint64
	Name string
}

func (r *dictionaryRepo) GetByNames(dbc dbctx.Context, kind domaingames.DictionaryKind, names []string) (map[string]uint64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := map[string]uint64{}
	if len(names) == 0 {
		return out, nil
	}
	table := kind.Table()
	if table == "" {
		return nil, aggregates.ValidationError(fmt.Sprintf("unknown dictionary %q", kind))
	}
	var rows []idName
	if err := transaction.WithContext(dbc.Context()).
		Table(table).
		Select("id, name").
		Where("name IN ?", names).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.Name] = row.ID
	}
	return out, nil
}

// CreateIgnoreDuplicates inserts names, silently skipping ones a concurrent writer already added.
func (r *dictionaryRepo) CreateIgnoreDuplicates(dbc dbctx.Context, kind domaingames.DictionaryKind, names []string) (int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(names) == 0 {
		return 0, nil
	}
	now := time.Now()
	var rows interface{}
	switch kind {
	case domaingames.DictCompany:
		out := make([]*types.Company, 0, len(names))
		for _, n := range names {
			out = append(out, &types.Company{Name: n, CreatedAt: now, UpdatedAt: now})
		}
		rows = &out
	case domaingames.DictCategory:
		out := make([]*types.Category, 0, len(names))
		for _, n := range names {
			out = append(out, &types.Category{Name: n, CreatedAt: now, UpdatedAt: now})
		}
		rows = &out
	case domaingames.DictGenre:
		out := make([]*types.Genre, 0, len(names))
		for _, n := range names {
			out = append(out, &types.Genre{Name: n, CreatedAt: now, UpdatedAt: now})
		}
		rows = &out
	default:
		return 0, aggregates.ValidationError(fmt.Sprintf("unknown dictionary %q", kind))
	}
	res := transaction.WithContext(dbc.Context()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}
