package games

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/games-aggregator/internal/data/aggregates"
	types "github.com/yungbote/games-aggregator/internal/domain"
	domaingames "github.com/yungbote/games-aggregator/internal/domain/games"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

type GameRepo interface {
	Create(dbc dbctx.Context, game *types.Game) error

	GetByID(dbc dbctx.Context, id uint64) (*types.Game, error)
	GetByIDs(dbc dbctx.Context, ids []uint64) ([]*types.Game, error)
	GetByName(dbc dbctx.Context, name string) ([]*types.Game, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Game, error)
	GetBySlot(dbc dbctx.Context, column string, sourceID uint64) (*types.Game, error)
	ListAfter(dbc dbctx.Context, afterID uint64, limit int) ([]*types.Game, error)
	Count(dbc dbctx.Context) (int64, error)

	UpdateFields(dbc dbctx.Context, id uint64, updates map[string]interface{}) error
	SetSlotIfEmpty(dbc dbctx.Context, id uint64, column string, sourceID uint64) (bool, error)

	DuplicateSlugGroups(dbc dbctx.Context) ([]SlugGroup, error)
	FullDeleteByIDs(dbc dbctx.Context, ids []uint64) error
}

// SlugGroup lists the ids sharing one slug, ascending.
type SlugGroup struct {
	Slug string
	IDs  []uint64
}

type gameRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGameRepo(db *gorm.DB, baseLog *logger.Logger) GameRepo {
	return &gameRepo{db: db, log: baseLog.With("repo", "GameRepo")}
}

func (r *gameRepo) Create(dbc dbctx.Context, game *types.Game) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if game == nil {
		return nil
	}
	return transaction.WithContext(dbc.Context()).Create(game).Error
}

func (r *gameRepo) GetByID(dbc dbctx.Context, id uint64) (*types.Game, error) {
	if id == 0 {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uint64{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *gameRepo) GetByIDs(dbc dbctx.Context, ids []uint64) ([]*types.Game, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Game
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Context()).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetByName returns exact-name matches, lowest id first. Resolver tie-breaking depends on the order.
func (r *gameRepo) GetByName(dbc dbctx.Context, name string) ([]*types.Game, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Game
	if name == "" {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Context()).
		Where("name = ?", name).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *gameRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Game, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if slug == "" {
		return nil, nil
	}
	var g types.Game
	err := transaction.WithContext(dbc.Context()).
		Where("slug = ?", slug).
		Order("id ASC").
		First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *gameRepo) GetBySlot(dbc dbctx.Context, column string, sourceID uint64) (*types.Game, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if !domaingames.IsSlotColumn(column) {
		return nil, aggregates.ValidationError(fmt.Sprintf("unknown slot column %q", column))
	}
	if sourceID == 0 {
		return nil, nil
	}
	var g types.Game
	err := transaction.WithContext(dbc.Context()).
		Where(column+" = ?", sourceID).
		First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *gameRepo) ListAfter(dbc dbctx.Context, afterID uint64, limit int) ([]*types.Game, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 500
	}
	var out []*types.Game
	if err := transaction.WithContext(dbc.Context()).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *gameRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Context()).Model(&types.Game{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *gameRepo) UpdateFields(dbc dbctx.Context, id uint64, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == 0 || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(dbc.Context()).
		Model(&types.Game{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// SetSlotIfEmpty writes sourceID into column only while the column is NULL. It reports whether
// the row changed; a unique violation (the record is already linked elsewhere) is returned as is.
func (r *gameRepo) SetSlotIfEmpty(dbc dbctx.Context, id uint64, column string, sourceID uint64) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if !domaingames.IsSlotColumn(column) {
		return false, aggregates.ValidationError(fmt.Sprintf("unknown slot column %q", column))
	}
	if id == 0 || sourceID == 0 {
		return false, nil
	}
	res := transaction.WithContext(dbc.Context()).
		Model(&types.Game{}).
		Where("id = ? AND "+column+" IS NULL", id).
		Updates(map[string]interface{}{
			column:       sourceID,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gameRepo) DuplicateSlugGroups(dbc dbctx.Context) ([]SlugGroup, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []struct {
		ID   uint64
		Slug string
	}
	if err := transaction.WithContext(dbc.Context()).
		Model(&types.Game{}).
		Select("id, slug").
		Where("slug IN (?)", transaction.Model(&types.Game{}).
			Select("slug").
			Group("slug").
			Having("COUNT(*) > 1")).
		Order("slug ASC, id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	var out []SlugGroup
	for _, row := range rows {
		if n := len(out); n > 0 && out[n-1].Slug == row.Slug {
			out[n-1].IDs = append(out[n-1].IDs, row.ID)
			continue
		}
		out = append(out, SlugGroup{Slug: row.Slug, IDs: []uint64{row.ID}})
	}
	return out, nil
}

// FullDeleteByIDs hard-deletes games together with their association rows.
func (r *gameRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uint64) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Context()).Transaction(func(txx *gorm.DB) error {
		for _, join := range []interface{}{
			&types.GameDeveloper{},
			&types.GamePublisher{},
			&types.GameCategory{},
			&types.GameGenre{},
		} {
			if err := txx.Where("game_id IN ?", ids).Delete(join).Error; err != nil {
				return err
			}
		}
		return txx.Where("id IN ?", ids).Delete(&types.Game{}).Error
	})
}
