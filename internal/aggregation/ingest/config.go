package ingest

import (
	"fmt"
	"strings"

	"github.com/yungbote/games-aggregator/internal/aggregation/dictionary"
	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
)

// Extracted is the normalized view of one source record.
type Extracted struct {
	Name        string
	ReleaseYear *int
	Developers  []string
	Publishers  []string
	Categories  []string
	Genres      []string
}

func (e Extracted) hasDevelopers() bool { return len(e.Developers) > 0 }
func (e Extracted) hasPublishers() bool { return len(e.Publishers) > 0 }

// SourceConfig is everything that differs between the per-source pipelines.
type SourceConfig struct {
	Kind     sources.Kind
	Extract  func(sources.Record) Extracted
	Required func(Extracted) bool
	// Secondary lets a record fall back to the kind's secondary slot when the primary is taken.
	Secondary bool
	// BatchSize is the default page size for Run.
	BatchSize int
}

const (
	DefaultBatchSize = 500
	gogBatchSize     = 100
)

// ConfigFor returns the built-in configuration of kind.
func ConfigFor(kind sources.Kind) (SourceConfig, error) {
	switch kind {
	case sources.KindSteam:
		return SourceConfig{
			Kind:      kind,
			Extract:   extractSteam,
			Required:  requireBoth,
			Secondary: true,
			BatchSize: DefaultBatchSize,
		}, nil
	case sources.KindGog:
		return SourceConfig{
			Kind:      kind,
			Extract:   extractGog,
			Required:  requireBoth,
			BatchSize: gogBatchSize,
		}, nil
	case sources.KindWikipedia:
		return SourceConfig{
			Kind:      kind,
			Extract:   extractWikipedia,
			Required:  requireBoth,
			BatchSize: DefaultBatchSize,
		}, nil
	case sources.KindPcgamingwiki:
		return SourceConfig{
			Kind:      kind,
			Extract:   extractPcgw,
			Required:  requireEither,
			BatchSize: DefaultBatchSize,
		}, nil
	default:
		return SourceConfig{}, fmt.Errorf("no pipeline for source %q", kind)
	}
}

func requireBoth(e Extracted) bool {
	return e.Name != "" && e.ReleaseYear != nil && e.hasDevelopers() && e.hasPublishers()
}

func requireEither(e Extracted) bool {
	return e.Name != "" && e.ReleaseYear != nil && (e.hasDevelopers() || e.hasPublishers())
}

func base(r sources.Record, name string, year *int) Extracted {
	return Extracted{
		Name:        strings.TrimSpace(name),
		ReleaseYear: year,
		Developers:  dictionary.NormalizeNames(r.Developers),
		Publishers:  dictionary.NormalizeNames(r.Publishers),
		Categories:  dictionary.NormalizeNames(r.Categories),
		Genres:      dictionary.NormalizeNames(r.Genres),
	}
}

func extractSteam(r sources.Record) Extracted {
	return base(r, r.Title, sources.YearFromDate(r.ReleaseDate))
}

func extractGog(r sources.Record) Extracted {
	year := sources.YearFromISODate(r.ReleaseDate)
	if year == nil {
		year = sources.YearFromTimestamps(r.ReleaseTimestamps...)
	}
	e := base(r, r.Title, year)
	// GOG tags are genres only.
	e.Categories = nil
	return e
}

func extractWikipedia(r sources.Record) Extracted {
	year := r.ReleaseYear
	if year == nil {
		year = sources.YearFromDate(r.ReleaseDate)
	}
	name := ""
	if r.CleanTitle != nil {
		name = *r.CleanTitle
	}
	return base(r, name, year)
}

func extractPcgw(r sources.Record) Extracted {
	name := r.Title
	if r.CleanTitle != nil && strings.TrimSpace(*r.CleanTitle) != "" {
		name = *r.CleanTitle
	}
	return base(r, name, r.ReleaseYear)
}
