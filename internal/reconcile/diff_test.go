package reconcile

import (
	"math"
	"testing"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/channel"
	"github.com/shopspring/decimal"
)

func product(code, category string, subtotal int64) *channel.Product {
	return &channel.Product{ProductCode: code, Category: category, Subtotal: decimal.NewFromInt(subtotal)}
}

func TestDiffClassification(t *testing.T) {
	current := map[string]*channel.Product{
		"UP":   product("UP", "0101", 150),
		"DOWN": product("DOWN", "0101", 150),
		"SAME": product("SAME", "0101", 100),
		"NEW":  product("NEW", "0101", 80),
	}
	previous := map[string]*channel.Product{
		"UP":   product("UP", "0101", 100),
		"DOWN": product("DOWN", "0101", 200),
		"SAME": product("SAME", "0101", 100),
		"GONE": product("GONE", "0101", 40),
	}

	rows := Diff(current, previous)
	if len(rows) != 4 {
		t.Fatalf("expected only current products, got %d rows", len(rows))
	}

	want := map[string]struct {
		delta  int64
		class  Classification
		remark string
	}{
		"UP":   {50, Increased, "increase"},
		"DOWN": {-50, Decreased, "decrease"},
		"SAME": {0, Unchanged, "no change"},
		"NEW":  {80, New, "new product"},
	}
	for _, r := range rows {
		w := want[r.ProductCode]
		if !r.Delta.Equal(decimal.NewFromInt(w.delta)) || r.Classification != w.class || r.Remark != w.remark {
			t.Errorf("%s: got delta=%s class=%s remark=%q, want %d %s %q",
				r.ProductCode, r.Delta, r.Classification, r.Remark, w.delta, w.class, w.remark)
		}
	}
}

func TestDiffWithoutPreviousMarksAllNew(t *testing.T) {
	rows := Diff(map[string]*channel.Product{
		"A": product("A", "0101", 10),
		"B": product("B", "0101", 0),
	}, nil)

	for _, r := range rows {
		if r.Classification != New || !r.Delta.Equal(r.Subtotal) {
			t.Errorf("%s: expected NEW with delta = subtotal, got %s %s", r.ProductCode, r.Classification, r.Delta)
		}
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in              string
		family, subtype int
	}{
		{"0102", 1, 2},
		{"0201飲料", 2, 1},
		{"03", 3, 0},
		{"031", 3, 0},
		{"飲料", math.MaxInt, math.MaxInt},
		{"", math.MaxInt, math.MaxInt},
		{"1", math.MaxInt, math.MaxInt},
	}
	for _, tt := range tests {
		f, s := ParseCategory(tt.in)
		if f != tt.family || s != tt.subtype {
			t.Errorf("ParseCategory(%q) = %d, %d; want %d, %d", tt.in, f, s, tt.family, tt.subtype)
		}
	}
}

func TestSortOrder(t *testing.T) {
	rows := []Row{
		{Product: channel.Product{ProductCode: "P009", Category: "misc"}},
		{Product: channel.Product{ProductCode: "P002", Category: "0102"}},
		{Product: channel.Product{ProductCode: "P003", Category: "0201"}},
		{Product: channel.Product{ProductCode: "", Category: "0102"}},
		{Product: channel.Product{ProductCode: "P001", Category: "0102"}},
		{Product: channel.Product{ProductCode: "P004", Category: "01"}},
	}
	Sort(rows)

	want := []string{"P004", "P001", "P002", "", "P003", "P009"}
	for i, code := range want {
		if rows[i].ProductCode != code {
			got := make([]string, len(rows))
			for j, r := range rows {
				got[j] = r.ProductCode
			}
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}
