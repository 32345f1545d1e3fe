// Package dictionary is the get-or-create registry over the company, category and genre tables.
package dictionary

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/games-aggregator/internal/data/aggregates"
	"github.com/yungbote/games-aggregator/internal/data/repos"
	domaingames "github.com/yungbote/games-aggregator/internal/domain/games"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

type Registry interface {
	// GetOrCreateMany returns one id per distinct normalized name, in first-seen order.
	GetOrCreateMany(dbc dbctx.Context, kind domaingames.DictionaryKind, names []string) ([]uint64, error)
	// LookupExisting never writes; names without a row are absent from the map.
	LookupExisting(dbc dbctx.Context, kind domaingames.DictionaryKind, names []string) (map[string]uint64, error)
}

type registry struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.DictionaryRepo
}

func NewRegistry(db *gorm.DB, log *logger.Logger, repo repos.DictionaryRepo) Registry {
	return &registry{db: db, log: log.With("service", "DictionaryRegistry"), repo: repo}
}

func (r *registry) GetOrCreateMany(dbc dbctx.Context, kind domaingames.DictionaryKind, names []string) ([]uint64, error) {
	names = NormalizeNames(names)
	if len(names) == 0 {
		return nil, nil
	}
	found, err := r.repo.GetByNames(dbc, kind, names)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", kind, err)
	}
	missing := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := found[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		err := aggregates.Savepoint(dbc, r.db, func(tx *gorm.DB) error {
			_, err := r.repo.CreateIgnoreDuplicates(dbc.WithTx(tx), kind, missing)
			return err
		})
		// A concurrent writer got there first; the re-select below picks its rows up.
		if err != nil && !aggregates.IsDuplicateKey(err) {
			return nil, fmt.Errorf("insert %s: %w", kind, err)
		}
		created, err := r.repo.GetByNames(dbc, kind, missing)
		if err != nil {
			return nil, fmt.Errorf("reselect %s: %w", kind, err)
		}
		for n, id := range created {
			found[n] = id
		}
	}
	out := make([]uint64, 0, len(names))
	for _, n := range names {
		id, ok := found[n]
		if !ok {
			return nil, aggregates.InvariantError(fmt.Sprintf("%s %q missing after insert", kind, n))
		}
		out = append(out, id)
	}
	return out, nil
}

func (r *registry) LookupExisting(dbc dbctx.Context, kind domaingames.DictionaryKind, names []string) (map[string]uint64, error) {
	names = NormalizeNames(names)
	if len(names) == 0 {
		return map[string]uint64{}, nil
	}
	return r.repo.GetByNames(dbc, kind, names)
}

// NormalizeNames trims, collapses internal whitespace, drops empties and removes exact
// duplicates, keeping first-occurrence order.
func NormalizeNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.Join(strings.Fields(n), " ")
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
