// Package sources defines the read contract the ingestion pipeline consumes from each
// external catalog, plus the per-kind slot layout on the canonical table.
package sources

import (
	"fmt"
	"strings"

	domaingames "github.com/yungbote/games-aggregator/internal/domain/games"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
)

type Kind string

const (
	KindSteam        Kind = "steam"
	KindGog          Kind = "gog"
	KindWikipedia    Kind = "wikipedia"
	KindPcgamingwiki Kind = "pcgamingwiki"
)

// Kinds lists every source in the order a full aggregation run processes them.
func Kinds() []Kind {
	return []Kind{KindSteam, KindGog, KindWikipedia, KindPcgamingwiki}
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindSteam, KindGog, KindWikipedia, KindPcgamingwiki:
		return k, nil
	case "pcgw":
		return KindPcgamingwiki, nil
	default:
		return "", fmt.Errorf("unknown source %q", s)
	}
}

// PrimaryColumn is the kind's slot on ga_games.
func (k Kind) PrimaryColumn() string {
	switch k {
	case KindSteam:
		return domaingames.ColSteamAppID
	case KindGog:
		return domaingames.ColGogGameID
	case KindWikipedia:
		return domaingames.ColWikipediaGameID
	case KindPcgamingwiki:
		return domaingames.ColPcgamingwikiGameID
	default:
		return ""
	}
}

// SecondaryColumn is the extra slot a kind may own. Only Steam has one.
func (k Kind) SecondaryColumn() string {
	if k == KindSteam {
		return domaingames.ColSecondSteamAppID
	}
	return ""
}

// Record is one external catalog row, flattened to the fields the merge engine reads.
type Record struct {
	ID         uint64
	Title      string
	CleanTitle *string

	ReleaseYear       *int
	ReleaseDate       string
	ReleaseTimestamps []int64

	Developers []string
	Publishers []string
	Categories []string
	Genres     []string

	Type string
}

// Adapter reads one source kind. Unconsumed returns records with id > afterID, ascending,
// that no canonical row references through the kind's primary or secondary slot.
type Adapter interface {
	Kind() Kind
	Unconsumed(dbc dbctx.Context, afterID uint64, limit int) ([]Record, error)
	TypeOf(dbc dbctx.Context, id uint64) (string, error)
}

// TypeLookup resolves a linked record's classification string.
type TypeLookup interface {
	TypeOf(dbc dbctx.Context, kind Kind, id uint64) (string, error)
}

// Registry holds one adapter per kind.
type Registry struct {
	adapters map[Kind]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: map[Kind]Adapter{}}
	for _, a := range adapters {
		if a != nil {
			r.adapters[a.Kind()] = a
		}
	}
	return r
}

func (r *Registry) Get(kind Kind) (Adapter, bool) {
	if r == nil {
		return nil, false
	}
	a, ok := r.adapters[kind]
	return a, ok
}

// TypeOf implements TypeLookup. Kinds without an adapter have no type.
func (r *Registry) TypeOf(dbc dbctx.Context, kind Kind, id uint64) (string, error) {
	a, ok := r.Get(kind)
	if !ok || id == 0 {
		return "", nil
	}
	return a.TypeOf(dbc, id)
}
