// Package canonical owns the ga_games rows and the attributes derived from their links.
package canonical

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	types "github.com/yungbote/games-aggregator/internal/domain"
	domaingames "github.com/yungbote/games-aggregator/internal/domain/games"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	"github.com/yungbote/games-aggregator/internal/pkg/pointers"
)

// MakeSlug lowercases name, turns whitespace runs into a hyphen, drops everything that is not
// a letter, mark, number or hyphen, and collapses and trims hyphens.
func MakeSlug(name string) string {
	// Casers keep state; one per call.
	lowered := cases.Lower(language.Und).String(name)
	var b strings.Builder
	b.Grow(len(lowered))
	hyphen := false
	for _, r := range lowered {
		switch {
		case unicode.IsSpace(r) || r == '-':
			hyphen = true
		case unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsNumber(r):
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FoldReleaseYear returns y when current is unset, otherwise the smaller of the two.
func FoldReleaseYear(current, y *int) *int {
	switch {
	case y == nil:
		return current
	case current == nil || *y < *current:
		return pointers.Int(*y)
	default:
		return current
	}
}

// typePrecedence lists where a classification is read from, highest priority first.
var typePrecedence = []struct {
	kind   sources.Kind
	column string
}{
	{sources.KindSteam, domaingames.ColSteamAppID},
	{sources.KindGog, domaingames.ColGogGameID},
}

// ResolveType walks the precedence list over the game's current links and returns the first
// non-empty type, or the default.
func ResolveType(dbc dbctx.Context, g *types.Game, lookup sources.TypeLookup) (string, error) {
	if g == nil || lookup == nil {
		return domaingames.DefaultType, nil
	}
	for _, p := range typePrecedence {
		id := g.Slot(p.column)
		if id == nil {
			continue
		}
		raw, err := lookup.TypeOf(dbc, p.kind, *id)
		if err != nil {
			return "", err
		}
		if t := cleanType(raw); t != "" {
			return t, nil
		}
	}
	return domaingames.DefaultType, nil
}

func cleanType(s string) string {
	return strings.TrimSpace(s)
}
