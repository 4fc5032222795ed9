package counting

import (
	"testing"
	"time"

	"stocktake/internal/core/types"
)

var testTime = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

func qty(v int64) types.Quantity { return types.NewQuantityFromInt(v) }

func testItem(initial int64) *Item {
	return NewItem("ART-001", "A1", "Filtre à huile", qty(initial), testTime)
}

func withPrice(item *Item, price string) *Item {
	p := types.MustMoney(price)
	item.Price = &p
	return item
}

// countAt records a count on the item in place, for test fixture setup.
func countAt(t *testing.T, item *Item, session int, counted int64) *Item {
	t.Helper()
	updated, err := ApplyCount(item, session, qty(counted), MovementCounting, testTime)
	if err != nil {
		t.Fatalf("ApplyCount(session=%d) failed: %v", session, err)
	}
	*item = *updated
	return item
}

func TestBaseline_ChainsPreviousCounts(t *testing.T) {
	item := testItem(100)

	if got := Baseline(item, 1); got != qty(100) {
		t.Errorf("session 1 baseline: want initial stock 100, got %s", got)
	}

	countAt(t, item, 1, 95)
	if got := Baseline(item, 2); got != qty(95) {
		t.Errorf("session 2 baseline: want counting1 95, got %s", got)
	}

	// Session 2 skipped: session 3 falls back to counting1.
	if got := Baseline(item, 3); got != qty(95) {
		t.Errorf("session 3 baseline with session 2 uncounted: want 95, got %s", got)
	}

	countAt(t, item, 2, 97)
	if got := Baseline(item, 3); got != qty(97) {
		t.Errorf("session 3 baseline: want counting2 97, got %s", got)
	}
}

func TestBaseline_OverrideFallback(t *testing.T) {
	item := testItem(100)
	ov := qty(80)
	item.BaselineOverrides[1] = &ov

	// No prior count: the imported expected stock for session 2 wins over
	// the original initial stock.
	if got := Baseline(item, 2); got != qty(80) {
		t.Errorf("want override 80, got %s", got)
	}

	// A recorded prior count beats the override.
	countAt(t, item, 1, 95)
	if got := Baseline(item, 2); got != qty(95) {
		t.Errorf("want counting1 95 over override, got %s", got)
	}
}

func TestApplyCount_VarianceAndValue(t *testing.T) {
	item := withPrice(testItem(100), "10")

	updated, err := ApplyCount(item, 1, qty(95), MovementCounting, testTime)
	if err != nil {
		t.Fatalf("ApplyCount failed: %v", err)
	}

	r := updated.Result(1)
	if r.Counting == nil || *r.Counting != qty(95) {
		t.Fatalf("counting1: want 95, got %v", r.Counting)
	}
	if r.Variance == nil || *r.Variance != qty(-5) {
		t.Fatalf("variance1: want -5, got %v", r.Variance)
	}
	if r.ValueVariance == nil || !r.ValueVariance.Equal(types.MustMoney("-50")) {
		t.Fatalf("valueVariance1: want -50, got %v", r.ValueVariance)
	}
	if !updated.CountingCompleted {
		t.Error("CountingCompleted should be set after a save")
	}
	if !updated.LastUpdated.Equal(testTime) {
		t.Error("LastUpdated should be set to save time")
	}

	// Second session counts the same quantity: variance against counting1
	// is zero, which makes the item drop out of session 3.
	updated, err = ApplyCount(updated, 2, qty(95), MovementCounting, testTime)
	if err != nil {
		t.Fatalf("ApplyCount session 2 failed: %v", err)
	}
	r = updated.Result(2)
	if r.Variance == nil || !r.Variance.IsZero() {
		t.Fatalf("variance2: want 0, got %v", r.Variance)
	}
	if Eligible(updated, 3) {
		t.Error("item with two exact counts should not be eligible for session 3")
	}
}

func TestApplyCount_NoPrice(t *testing.T) {
	item := testItem(50)

	updated, err := ApplyCount(item, 1, qty(40), MovementCounting, testTime)
	if err != nil {
		t.Fatalf("ApplyCount failed: %v", err)
	}

	r := updated.Result(1)
	if r.ValueVariance == nil || !r.ValueVariance.IsZero() {
		t.Errorf("valueVariance without price: want 0, got %v", r.ValueVariance)
	}
	if r.Variance == nil || *r.Variance != qty(-10) {
		t.Errorf("variance is still computed without price: want -10, got %v", r.Variance)
	}
}

func TestApplyCount_FractionalExact(t *testing.T) {
	item := testItem(0)
	item.InitialStock = types.NewQuantityFromFloat64(10.5)

	updated, err := ApplyCount(item, 1, types.NewQuantityFromFloat64(10.2), MovementCounting, testTime)
	if err != nil {
		t.Fatalf("ApplyCount failed: %v", err)
	}

	want := types.NewQuantityFromFloat64(-0.3)
	if got := *updated.Result(1).Variance; got != want {
		t.Errorf("fractional variance must be exact: want %s, got %s", want, got)
	}
}

func TestApplyCount_ResaveOverwritesResultKeepsMovements(t *testing.T) {
	item := testItem(100)

	updated, err := ApplyCount(item, 1, qty(90), MovementCounting, testTime)
	if err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	updated, err = ApplyCount(updated, 1, qty(92), MovementCounting, testTime.Add(time.Minute))
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	if got := *updated.Result(1).Counting; got != qty(92) {
		t.Errorf("re-save should overwrite counting1: want 92, got %s", got)
	}
	if got := *updated.Result(1).Variance; got != qty(-8) {
		t.Errorf("re-save variance: want -8, got %s", got)
	}
	if len(updated.Movements) != 2 {
		t.Errorf("movement log is append-only: want 2 entries, got %d", len(updated.Movements))
	}
}

func TestApplyCount_DoesNotMutateInput(t *testing.T) {
	item := testItem(100)

	if _, err := ApplyCount(item, 1, qty(90), MovementCounting, testTime); err != nil {
		t.Fatalf("ApplyCount failed: %v", err)
	}

	if item.Result(1).Counted() {
		t.Error("input item must not be mutated")
	}
	if len(item.Movements) != 0 {
		t.Error("input movement log must not grow")
	}
}

func TestApplyCount_SessionRange(t *testing.T) {
	item := testItem(10)
	for _, s := range []int{0, 5, -1} {
		if _, err := ApplyCount(item, s, qty(1), MovementCounting, testTime); err == nil {
			t.Errorf("session %d: want validation error", s)
		}
	}
}
