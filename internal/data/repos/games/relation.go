package games

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/games-aggregator/internal/data/aggregates"
	types "github.com/yungbote/games-aggregator/internal/domain"
	domaingames "github.com/yungbote/games-aggregator/internal/domain/games"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

// RelationRepo maintains the four game association tables. Attach is a union: existing
// pairs are left alone and nothing is ever detached.
type RelationRepo interface {
	Attach(dbc dbctx.Context, rel domaingames.Relation, gameID uint64, ids []uint64) (int, error)
	IDsFor(dbc dbctx.Context, rel domaingames.Relation, gameID uint64) ([]uint64, error)
	NamesFor(dbc dbctx.Context, rel domaingames.Relation, gameID uint64) ([]string, error)
}

type relationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRelationRepo(db *gorm.DB, baseLog *logger.Logger) RelationRepo {
	return &relationRepo{db: db, log: baseLog.With("repo", "RelationRepo")}
}

func (r *relationRepo) Attach(dbc dbctx.Context, rel domaingames.Relation, gameID uint64, ids []uint64) (int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if gameID == 0 || len(ids) == 0 {
		return 0, nil
	}
	_, column := rel.Table()
	var rows interface{}
	switch rel {
	case domaingames.RelDevelopers:
		out := make([]*types.GameDeveloper, 0, len(ids))
		for _, id := range ids {
			out = append(out, &types.GameDeveloper{GameID: gameID, CompanyID: id})
		}
		rows = &out
	case domaingames.RelPublishers:
		out := make([]*types.GamePublisher, 0, len(ids))
		for _, id := range ids {
			out = append(out, &types.GamePublisher{GameID: gameID, CompanyID: id})
		}
		rows = &out
	case domaingames.RelCategories:
		out := make([]*types.GameCategory, 0, len(ids))
		for _, id := range ids {
			out = append(out, &types.GameCategory{GameID: gameID, CategoryID: id})
		}
		rows = &out
	case domaingames.RelGenres:
		out := make([]*types.GameGenre, 0, len(ids))
		for _, id := range ids {
			out = append(out, &types.GameGenre{GameID: gameID, GenreID: id})
		}
		rows = &out
	default:
		return 0, aggregates.ValidationError(fmt.Sprintf("unknown relation %q", rel))
	}
	res := transaction.WithContext(dbc.Context()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "game_id"}, {Name: column}},
			DoNothing: true,
		}).
		Create(rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *relationRepo) IDsFor(dbc dbctx.Context, rel domaingames.Relation, gameID uint64) ([]uint64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	table, column := rel.Table()
	if table == "" {
		return nil, aggregates.ValidationError(fmt.Sprintf("unknown relation %q", rel))
	}
	var out []uint64
	if err := transaction.WithContext(dbc.Context()).
		Table(table).
		Where("game_id = ?", gameID).
		Order(column+" ASC").
		Pluck(column, &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// NamesFor resolves the dictionary names attached to gameID, ordered by name.
func (r *relationRepo) NamesFor(dbc dbctx.Context, rel domaingames.Relation, gameID uint64) ([]string, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	table, column := rel.Table()
	if table == "" {
		return nil, aggregates.ValidationError(fmt.Sprintf("unknown relation %q", rel))
	}
	dict := relationDictionary(rel).Table()
	var out []string
	if err := transaction.WithContext(dbc.Context()).
		Table(dict+" AS d").
		Joins("JOIN "+table+" AS j ON j."+column+" = d.id").
		Where("j.game_id = ?", gameID).
		Order("d.name ASC").
		Pluck("d.name", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func relationDictionary(rel domaingames.Relation) domaingames.DictionaryKind {
	switch rel {
	case domaingames.RelCategories:
		return domaingames.DictCategory
	case domaingames.RelGenres:
		return domaingames.DictGenre
	default:
		return domaingames.DictCompany
	}
}
