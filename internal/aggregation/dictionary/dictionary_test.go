package dictionary

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/yungbote/games-aggregator/internal/data/aggregates"
	"github.com/yungbote/games-aggregator/internal/data/repos"
	"github.com/yungbote/games-aggregator/internal/data/repos/testutil"
	types "github.com/yungbote/games-aggregator/internal/domain"
	domaingames "github.com/yungbote/games-aggregator/internal/domain/games"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
)

func TestNormalizeNames(t *testing.T) {
	cases := []struct {
		in   []string
		want []string
	}{
		{nil, nil},
		{[]string{"", "   ", "\t"}, []string{}},
		{[]string{"  id   Software ", "id Software", "ID Software"}, []string{"id Software", "ID Software"}},
		{[]string{"Bethesda\nSoftworks", "id Software", "Bethesda Softworks"}, []string{"Bethesda Softworks", "id Software"}},
	}
	for _, tc := range cases {
		got := NormalizeNames(tc.in)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("NormalizeNames(%q): want=%q got=%q", tc.in, tc.want, got)
		}
	}
}

func TestGetOrCreateMany(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)
	reg := NewRegistry(tx, log, repos.New(tx, log).Dictionaries)

	ids, err := reg.GetOrCreateMany(dbc, domaingames.DictCompany, []string{"id Software", " id  Software", "", "GT Interactive"})
	if err != nil {
		t.Fatalf("GetOrCreateMany: %v", err)
	}
	if len(ids) != 2 || ids[0] == ids[1] {
		t.Fatalf("expected two distinct ids, got %v", ids)
	}

	again, err := reg.GetOrCreateMany(dbc, domaingames.DictCompany, []string{"GT Interactive", "id Software"})
	if err != nil {
		t.Fatalf("GetOrCreateMany again: %v", err)
	}
	if again[0] != ids[1] || again[1] != ids[0] {
		t.Fatalf("ids changed across calls: first=%v second=%v", ids, again)
	}
	if got := testutil.CountRows(t, ctx, tx, types.Company{}.TableName()); got != 2 {
		t.Fatalf("companies: want=2 got=%d", got)
	}

	if ids, err := reg.GetOrCreateMany(dbc, domaingames.DictGenre, []string{"  "}); err != nil || len(ids) != 0 {
		t.Fatalf("empty input: ids=%v err=%v", ids, err)
	}
}

// blindRepo accepts inserts but never finds a row.
type blindRepo struct{}

func (blindRepo) GetByNames(dbctx.Context, domaingames.DictionaryKind, []string) (map[string]uint64, error) {
	return map[string]uint64{}, nil
}

func (blindRepo) CreateIgnoreDuplicates(_ dbctx.Context, _ domaingames.DictionaryKind, names []string) (int, error) {
	return len(names), nil
}

func TestGetOrCreateManyMissingRowIsInvariantViolation(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	reg := NewRegistry(tx, testutil.Logger(t), blindRepo{})

	ids, err := reg.GetOrCreateMany(dbc, domaingames.DictGenre, []string{"Shooter"})
	if !errors.Is(err, aggregates.ErrInvariant) {
		t.Fatalf("expected invariant error, got ids=%v err=%v", ids, err)
	}
}

func TestLookupExistingDoesNotWrite(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)
	reg := NewRegistry(tx, log, repos.New(tx, log).Dictionaries)

	if _, err := reg.GetOrCreateMany(dbc, domaingames.DictCategory, []string{"Single-player"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := reg.LookupExisting(dbc, domaingames.DictCategory, []string{"Single-player", "Co-op"})
	if err != nil {
		t.Fatalf("LookupExisting: %v", err)
	}
	if _, ok := got["Single-player"]; !ok || len(got) != 1 {
		t.Fatalf("unexpected lookup: %v", got)
	}
	if n := testutil.CountRows(t, ctx, tx, types.Category{}.TableName()); n != 1 {
		t.Fatalf("categories: want=1 got=%d", n)
	}
}
