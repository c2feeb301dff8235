// Package reconcile compares aggregated snapshots of two versions and orders
// the result for presentation.
package reconcile

import (
	"math"
	"regexp"
	"sort"
	"strconv"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/channel"
	"github.com/shopspring/decimal"
)

// Classification describes how a product changed against the previous version.
type Classification string

const (
	New       Classification = "NEW"
	Increased Classification = "INCREASED"
	Decreased Classification = "DECREASED"
	Unchanged Classification = "UNCHANGED"
)

// Remark is the display text shown next to a classification.
func (c Classification) Remark() string {
	switch c {
	case New:
		return "new product"
	case Increased:
		return "increase"
	case Decreased:
		return "decrease"
	default:
		return "no change"
	}
}

// Row is one product of an integration result.
type Row struct {
	channel.Product
	Delta          decimal.Decimal `json:"delta"`
	Classification Classification  `json:"classification"`
	Remark         string          `json:"remark"`
}

// Diff annotates every product of current with its delta against previous.
// A nil previous marks every product NEW. The result is sorted with Sort.
func Diff(current, previous map[string]*channel.Product) []Row {
	rows := make([]Row, 0, len(current))
	for code, cur := range current {
		row := Row{Product: *cur}
		prev, ok := previous[code]
		if !ok {
			row.Delta = cur.Subtotal
			row.Classification = New
		} else {
			row.Delta = cur.Subtotal.Sub(prev.Subtotal)
			switch row.Delta.Sign() {
			case 1:
				row.Classification = Increased
			case -1:
				row.Classification = Decreased
			default:
				row.Classification = Unchanged
			}
		}
		row.Remark = row.Classification.Remark()
		rows = append(rows, row)
	}
	Sort(rows)
	return rows
}

var categoryPattern = regexp.MustCompile(`^(\d{2})(\d{2})?`)

// ParseCategory extracts the family and subtype codes from the leading digits
// of a category. Categories without a leading two-digit code return
// math.MaxInt for both; a missing subtype is 0.
func ParseCategory(category string) (family, subtype int) {
	m := categoryPattern.FindStringSubmatch(category)
	if m == nil {
		return math.MaxInt, math.MaxInt
	}
	family, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		subtype, _ = strconv.Atoi(m[2])
	}
	return family, subtype
}

// Sort orders rows by category family, category subtype, then product code
// ascending with blank codes last.
func Sort(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return less(rows[i].Category, rows[i].ProductCode, rows[j].Category, rows[j].ProductCode)
	})
}

func less(catA, codeA, catB, codeB string) bool {
	famA, subA := ParseCategory(catA)
	famB, subB := ParseCategory(catB)
	if famA != famB {
		return famA < famB
	}
	if subA != subB {
		return subA < subB
	}
	switch {
	case codeA == "":
		return false
	case codeB == "":
		return true
	}
	return codeA < codeB
}
