// Package catalog implements the source adapters over the scraper-owned catalog tables.
package catalog

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	domaingames "github.com/yungbote/games-aggregator/internal/domain/games"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
)

const defaultLimit = 500

// unconsumed loads rows of T after afterID that no canonical game references via kind's slots.
func unconsumed[T any](db *gorm.DB, dbc dbctx.Context, table string, kind sources.Kind, afterID uint64, limit int) ([]T, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = db
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	games := domaingames.Game{}.TableName()
	q := transaction.WithContext(dbc.Context()).
		Model(new(T)).
		Where(table+".id > ?", afterID).
		Where("NOT EXISTS (SELECT 1 FROM " + games + " g WHERE g." + kind.PrimaryColumn() + " = " + table + ".id)")
	if col := kind.SecondaryColumn(); col != "" {
		q = q.Where("NOT EXISTS (SELECT 1 FROM " + games + " g2 WHERE g2." + col + " = " + table + ".id)")
	}
	var out []T
	if err := q.Order(table + ".id ASC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func typeColumn(db *gorm.DB, dbc dbctx.Context, table, column string, id uint64) (string, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = db
	}
	if id == 0 {
		return "", nil
	}
	var out []string
	err := transaction.WithContext(dbc.Context()).
		Table(table).
		Where("id = ?", id).
		Limit(1).
		Pluck(column, &out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && len(out) == 0) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return out[0], nil
}

func cloneNames(v []string) []string {
	if len(v) == 0 {
		return nil
	}
	out := make([]string, len(v))
	copy(out, v)
	return out
}
