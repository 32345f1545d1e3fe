package sources

import "testing"

func TestYearFromISODate(t *testing.T) {
	cases := map[string]int{
		"1993-12-10":           1993,
		"2020-05-01T00:00:00Z": 2020,
	}
	for in, want := range cases {
		got := YearFromISODate(in)
		if got == nil || *got != want {
			t.Fatalf("YearFromISODate(%q): want=%d got=%v", in, want, got)
		}
	}
	for _, in := range []string{"", "1993", "Dec 10, 1993", "93-12-10"} {
		if got := YearFromISODate(in); got != nil {
			t.Fatalf("YearFromISODate(%q): want nil got=%d", in, *got)
		}
	}
}

func TestYearFromDate(t *testing.T) {
	if got := YearFromDate("1996-06-22"); got == nil || *got != 1996 {
		t.Fatalf("unexpected year: %v", got)
	}
	if got := YearFromDate(" 2004 "); got == nil || *got != 2004 {
		t.Fatalf("unexpected year: %v", got)
	}
	if got := YearFromDate("Coming soon"); got != nil {
		t.Fatalf("expected nil, got %d", *got)
	}
}

func TestYearFromTimestamps(t *testing.T) {
	// 1993-12-10T00:00:00Z
	if got := YearFromTimestamps(0, 755481600); got == nil || *got != 1993 {
		t.Fatalf("unexpected year: %v", got)
	}
	// First positive timestamp wins.
	if got := YearFromTimestamps(946684800, 755481600); got == nil || *got != 2000 {
		t.Fatalf("unexpected year: %v", got)
	}
	if got := YearFromTimestamps(0, -1); got != nil {
		t.Fatalf("expected nil, got %d", *got)
	}
}

func TestKindSlots(t *testing.T) {
	if KindSteam.SecondaryColumn() == "" {
		t.Fatalf("steam must own a secondary slot")
	}
	for _, k := range []Kind{KindGog, KindWikipedia, KindPcgamingwiki} {
		if k.SecondaryColumn() != "" {
			t.Fatalf("%s must not own a secondary slot", k)
		}
		if k.PrimaryColumn() == "" {
			t.Fatalf("%s has no primary slot", k)
		}
	}
	if k, err := ParseKind(" PCGW "); err != nil || k != KindPcgamingwiki {
		t.Fatalf("ParseKind: k=%s err=%v", k, err)
	}
	if _, err := ParseKind("epic"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
