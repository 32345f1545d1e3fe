package resolver

import types "github.com/yungbote/games-aggregator/internal/domain"

type candidate struct {
	game       *types.Game
	yearMatch  bool
	devOverlap int
	pubOverlap int
}

func (c candidate) score() int {
	s := c.devOverlap + c.pubOverlap
	if c.yearMatch {
		s += 2
	}
	return s
}

func (c candidate) eligible() bool {
	return c.yearMatch || c.devOverlap > 0 || c.pubOverlap > 0
}

// pickBest returns the highest-scoring eligible candidate. Input is in ascending id order and
// only a strictly higher score replaces the current pick, so ties keep the lowest id.
func pickBest(cs []candidate) *candidate {
	var best *candidate
	for i := range cs {
		c := &cs[i]
		if !c.eligible() {
			continue
		}
		if best == nil || c.score() > best.score() {
			best = c
		}
	}
	return best
}

func overlap(have, given []uint64) int {
	if len(have) == 0 || len(given) == 0 {
		return 0
	}
	set := make(map[uint64]struct{}, len(have))
	for _, id := range have {
		set[id] = struct{}{}
	}
	n := 0
	seen := make(map[uint64]struct{}, len(given))
	for _, id := range given {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := set[id]; ok {
			n++
		}
	}
	return n
}
