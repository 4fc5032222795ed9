package counting

import (
	"testing"

	"stocktake/internal/core/types"
)

func TestReconcileCounts(t *testing.T) {
	a := withPrice(NewItem("A1", "", "Article A", qty(40), testTime), "5")
	b := NewItem("B2", "E1", "Article B", qty(7), testTime)
	c := NewItem("C3", "", "Article C", qty(3), testTime)

	rows := []QuantityRow{
		{ArticleCode: "A1", Quantity: qty(42)},
		{ArticleCode: "B2", Emplacement: "E1", Quantity: qty(7)},
	}

	out, err := ReconcileCounts([]*Item{a, b, c}, rows, 1, testTime)
	if err != nil {
		t.Fatalf("ReconcileCounts failed: %v", err)
	}

	ra := out[0].Result(1)
	if ra.Counting == nil || *ra.Counting != qty(42) {
		t.Fatalf("A1 counting1: want 42, got %v", ra.Counting)
	}
	if *ra.Variance != qty(2) {
		t.Errorf("A1 variance1: want 2, got %s", ra.Variance)
	}
	if !ra.ValueVariance.Equal(types.MustMoney("10")) {
		t.Errorf("A1 valueVariance1: want 10, got %s", ra.ValueVariance)
	}

	if *out[1].Result(1).Variance != qty(0) {
		t.Errorf("B2 variance1: want 0, got %s", out[1].Result(1).Variance)
	}

	// Unmatched items pass through untouched, structurally identical.
	if out[2] != c {
		t.Error("unmatched item must be returned unchanged (same pointer)")
	}

	// Movements from reconciliation are marked external.
	if got := out[0].Movements[0].Type; got != MovementExternal {
		t.Errorf("movement type: want external, got %s", got)
	}
}

func TestReconcileCounts_LastRowWins(t *testing.T) {
	item := NewItem("A1", "E1", "Article A", qty(10), testTime)

	rows := []QuantityRow{
		{ArticleCode: "A1", Emplacement: "E1", Quantity: qty(5)},
		{ArticleCode: "A1", Emplacement: "E1", Quantity: qty(8)},
	}
	out, err := ReconcileCounts([]*Item{item}, rows, 1, testTime)
	if err != nil {
		t.Fatalf("ReconcileCounts failed: %v", err)
	}
	if got := *out[0].Result(1).Counting; got != qty(8) {
		t.Errorf("duplicate key: want last row 8, got %s", got)
	}
}

func TestReconcileCounts_KeyIncludesEmplacement(t *testing.T) {
	// Same article code in two locations: only the matching location is hit.
	a := NewItem("A1", "E1", "Article A", qty(10), testTime)
	b := NewItem("A1", "E2", "Article A", qty(10), testTime)

	rows := []QuantityRow{{ArticleCode: "A1", Emplacement: "E1", Quantity: qty(9)}}
	out, err := ReconcileCounts([]*Item{a, b}, rows, 1, testTime)
	if err != nil {
		t.Fatalf("ReconcileCounts failed: %v", err)
	}
	if !out[0].Result(1).Counted() {
		t.Error("A1/E1 should be matched")
	}
	if out[1] != b {
		t.Error("A1/E2 must pass through unchanged")
	}
}

func TestReconcileCounts_SessionRange(t *testing.T) {
	for _, s := range []int{0, 4, 5} {
		if _, err := ReconcileCounts(nil, nil, s, testTime); err == nil {
			t.Errorf("session %d: want validation error", s)
		}
	}
	for _, s := range []int{1, 2, 3} {
		if _, err := ReconcileCounts(nil, nil, s, testTime); err != nil {
			t.Errorf("session %d: unexpected error %v", s, err)
		}
	}
}

func TestOverrideBaseline(t *testing.T) {
	a := NewItem("A1", "", "Article A", qty(100), testTime)
	b := NewItem("B2", "", "Article B", qty(50), testTime)

	rows := []QuantityRow{{ArticleCode: "A1", Quantity: qty(80)}}
	out, err := OverrideBaseline([]*Item{a, b}, rows, 2, testTime)
	if err != nil {
		t.Fatalf("OverrideBaseline failed: %v", err)
	}

	ov := out[0].BaselineOverride(2)
	if ov == nil || *ov != qty(80) {
		t.Fatalf("A1 override for session 2: want 80, got %v", ov)
	}
	if out[0].Result(2).Counted() {
		t.Error("baseline override must not record a count")
	}
	if len(out[0].Movements) != 0 {
		t.Error("baseline override must not append movements")
	}
	if out[1] != b {
		t.Error("unmatched item must pass through unchanged")
	}

	// The override becomes the session baseline when no prior count exists.
	if got := Baseline(out[0], 2); got != qty(80) {
		t.Errorf("baseline after override: want 80, got %s", got)
	}
}

func TestOverrideBaseline_SessionRange(t *testing.T) {
	if _, err := OverrideBaseline(nil, nil, 1, testTime); err == nil {
		t.Error("session 1 has no baseline override; want validation error")
	}
	for _, s := range []int{2, 3, 4} {
		if _, err := OverrideBaseline(nil, nil, s, testTime); err != nil {
			t.Errorf("session %d: unexpected error %v", s, err)
		}
	}
}
