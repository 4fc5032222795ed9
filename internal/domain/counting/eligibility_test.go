package counting

import "testing"

func TestEligibleItems_Session1IncludesEverything(t *testing.T) {
	items := []*Item{testItem(10), testItem(20), testItem(30)}
	countAt(t, items[0], 1, 10)

	got := EligibleItems(items, 1)
	if len(got) != 3 {
		t.Fatalf("session 1: want all 3 items, got %d", len(got))
	}
}

func TestEligibleItems_ExcludesOnlyZeroVarianceChains(t *testing.T) {
	matched := testItem(100) // counted, exact match
	countAt(t, matched, 1, 100)

	discrepant := testItem(100) // counted, variance != 0
	countAt(t, discrepant, 1, 95)

	skipped := testItem(100) // never counted in session 1

	items := []*Item{matched, discrepant, skipped}
	got := EligibleItems(items, 2)

	if len(got) != 2 {
		t.Fatalf("session 2: want 2 eligible, got %d", len(got))
	}
	if got[0] != discrepant || got[1] != skipped {
		t.Error("eligible set must preserve collection order and keep skipped items")
	}
	if Eligible(matched, 2) {
		t.Error("exact zero-variance count must exclude the item from the next session")
	}
}

func TestEligibleItems_SkippedSessionKeepsItemEligible(t *testing.T) {
	item := testItem(100)
	countAt(t, item, 1, 100) // exact in session 1
	// Session 2 never counted.

	if !Eligible(item, 3) {
		t.Error("an uncounted prior session keeps the item eligible")
	}
}

func TestEligibleItems_MonotoneNarrowing(t *testing.T) {
	items := []*Item{testItem(10), testItem(20), testItem(30), testItem(40)}
	countAt(t, items[0], 1, 10) // exact
	countAt(t, items[1], 1, 19) // off by one
	countAt(t, items[2], 1, 30) // exact
	countAt(t, items[2], 2, 30) // exact again
	countAt(t, items[3], 1, 40) // exact

	prev := EligibleItems(items, 1)
	for s := 2; s <= MaxSessions; s++ {
		cur := EligibleItems(items, s)
		if len(cur) > len(prev) {
			t.Fatalf("eligible set grew from session %d to %d: %d -> %d", s-1, s, len(prev), len(cur))
		}
		inPrev := make(map[*Item]bool, len(prev))
		for _, it := range prev {
			inPrev[it] = true
		}
		for _, it := range cur {
			if !inPrev[it] {
				t.Fatalf("session %d eligible set is not a subset of session %d", s, s-1)
			}
		}
		prev = cur
	}
}

func TestSearchItems(t *testing.T) {
	a := NewItem("FLT-100", "A1", "Filtre à huile", qty(5), testTime)
	a.Reference = "REF-9"
	b := NewItem("BRK-200", "B2", "Plaquette de frein", qty(5), testTime)
	items := []*Item{a, b}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"empty query returns all", "", 2},
		{"article code", "flt", 1},
		{"description", "frein", 1},
		{"emplacement", "B2", 1},
		{"reference", "ref-9", 1},
		{"no match", "xyz", 0},
		{"whitespace only", "   ", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SearchItems(items, tt.query); len(got) != tt.want {
				t.Errorf("SearchItems(%q): want %d items, got %d", tt.query, tt.want, len(got))
			}
		})
	}
}
