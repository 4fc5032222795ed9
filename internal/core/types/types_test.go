package types

import (
	"encoding/json"
	"testing"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Quantity
		wantErr bool
	}{
		{name: "integer", input: "100", want: NewQuantityFromInt(100)},
		{name: "fraction", input: "10.5", want: Quantity(105000)},
		{name: "comma separator", input: "1250,5", want: Quantity(12505000)},
		{name: "grouping space", input: "1 250", want: NewQuantityFromInt(1250)},
		{name: "negative", input: "-5.25", want: Quantity(-52500)},
		{name: "explicit plus", input: "+3", want: NewQuantityFromInt(3)},
		{name: "leading dot", input: ".5", want: Quantity(5000)},
		{name: "extra digits truncated", input: "1.123456", want: Quantity(11234)},
		{name: "exponent form", input: "1e2", want: NewQuantityFromInt(100)},
		{name: "whitespace", input: "  42  ", want: NewQuantityFromInt(42)},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
		{name: "infinity", input: "Inf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuantity(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseQuantity(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseQuantity(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseQuantity(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestQuantityString(t *testing.T) {
	tests := []struct {
		q       Quantity
		str     string
		compact string
	}{
		{NewQuantityFromInt(95), "95.0000", "95"},
		{Quantity(105000), "10.5000", "10.5"},
		{Quantity(-52500), "-5.2500", "-5.25"},
		{Quantity(0), "0.0000", "0"},
		{Quantity(1), "0.0001", "0.0001"},
		{Quantity(-1), "-0.0001", "-0.0001"},
	}

	for _, tt := range tests {
		if got := tt.q.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}
		if got := tt.q.Compact(); got != tt.compact {
			t.Errorf("Compact() = %q, want %q", got, tt.compact)
		}
	}
}

func TestQuantityArithmeticExact(t *testing.T) {
	// 10.5 - 10.2 must be exactly 0.3, which float64 cannot represent.
	counted, _ := ParseQuantity("10.5")
	baseline, _ := ParseQuantity("10.2")

	diff := counted.Sub(baseline)
	if diff.Compact() != "0.3" {
		t.Errorf("10.5 - 10.2 = %s, want 0.3", diff.Compact())
	}
	if !diff.IsPositive() || diff.IsZero() {
		t.Error("difference should be strictly positive")
	}
	if diff.Neg().Compact() != "-0.3" {
		t.Errorf("negation = %s, want -0.3", diff.Neg().Compact())
	}
}

func TestQuantityDecimal(t *testing.T) {
	q, _ := ParseQuantity("95.5")
	if got := q.Decimal().String(); got != "95.5" {
		t.Errorf("Decimal() = %s, want 95.5", got)
	}
}

func TestQuantityJSONRoundTrip(t *testing.T) {
	type payload struct {
		Q Quantity `json:"q"`
	}

	out, err := json.Marshal(payload{Q: Quantity(105000)})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `{"q":10.5000}` {
		t.Errorf("marshal = %s", out)
	}

	var in payload
	for _, raw := range []string{`{"q":10.5}`, `{"q":"10,5"}`, `{"q":null}`} {
		if err := json.Unmarshal([]byte(raw), &in); err != nil {
			t.Fatalf("unmarshal %s failed: %v", raw, err)
		}
	}
	if err := json.Unmarshal([]byte(`{"q":10.5}`), &in); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if in.Q != Quantity(105000) {
		t.Errorf("unmarshal = %d, want 105000", in.Q)
	}
}
