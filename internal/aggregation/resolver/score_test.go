package resolver

import (
	"testing"

	types "github.com/yungbote/games-aggregator/internal/domain"
)

func TestPickBest(t *testing.T) {
	g := func(id uint64) *types.Game { return &types.Game{ID: id} }

	cases := []struct {
		name string
		in   []candidate
		want uint64
	}{
		{"empty", nil, 0},
		{"nothing eligible", []candidate{{game: g(1)}, {game: g(2)}}, 0},
		{"year only is eligible", []candidate{{game: g(1)}, {game: g(2), yearMatch: true}}, 2},
		{"tie keeps lowest id", []candidate{{game: g(3), devOverlap: 1}, {game: g(5), pubOverlap: 1}}, 3},
		{"year outweighs one overlap", []candidate{{game: g(1), devOverlap: 1}, {game: g(2), yearMatch: true}}, 2},
		{"overlaps add up", []candidate{{game: g(1), yearMatch: true}, {game: g(2), devOverlap: 2, pubOverlap: 1}}, 2},
	}
	for _, tc := range cases {
		best := pickBest(tc.in)
		var got uint64
		if best != nil {
			got = best.game.ID
		}
		if got != tc.want {
			t.Fatalf("%s: want=%d got=%d", tc.name, tc.want, got)
		}
	}
}

func TestOverlap(t *testing.T) {
	if n := overlap([]uint64{1, 2, 3}, []uint64{3, 3, 4, 1}); n != 2 {
		t.Fatalf("overlap: want=2 got=%d", n)
	}
	if n := overlap(nil, []uint64{1}); n != 0 {
		t.Fatalf("overlap empty: got=%d", n)
	}
}
