// Package excel reads forecast upload workbooks and builds the upload template.
package excel

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/apperr"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Headers are the upload columns in order.
var Headers = []string{"中類名稱", "貨品規格", "品號", "品名", "庫位", "箱數小計"}

const (
	colCategory = iota
	colSpec
	colProductCode
	colProductName
	colWarehouseLocation
	colQuantity
)

// Row is one parsed data row. Number is the 1-based sheet row, header included.
type Row struct {
	Number            int
	Category          string
	Spec              string
	ProductCode       string
	ProductName       string
	WarehouseLocation string
	Quantity          decimal.Decimal
}

// ValidateFileName accepts .xlsx files only.
func ValidateFileName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validation("file is required")
	}
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return apperr.Validation("invalid file format %q, only .xlsx files are accepted", filepath.Ext(name))
	}
	return nil
}

// Parse reads the first sheet of an .xlsx workbook. Empty rows are skipped;
// every row error is collected and returned together as one validation error.
func Parse(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Validation("failed to read Excel file: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.Validation("Excel file contains no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Validation("failed to read sheet %s: %v", sheets[0], err)
	}

	if len(rows) == 0 || nonEmpty(rows[0]) < len(Headers) {
		return nil, apperr.Validation("Excel file is missing required columns, expected %d columns: %s",
			len(Headers), strings.Join(Headers, ", "))
	}
	if len(rows) < 2 {
		return nil, apperr.Validation("Excel file has no data rows")
	}

	var (
		out    []Row
		errs   []string
		seenAt = make(map[string]int)
	)
	for i := 1; i < len(rows); i++ {
		cells := rows[i]
		if isEmpty(cells) {
			continue
		}
		number := i + 1

		row, rowErrs := parseRow(cells, number)
		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}
		if first, dup := seenAt[row.ProductCode]; dup {
			errs = append(errs, fmt.Sprintf("Row %d: 品號 %s duplicates row %d", number, row.ProductCode, first))
			continue
		}
		seenAt[row.ProductCode] = number
		out = append(out, row)
	}

	if len(errs) > 0 {
		return nil, apperr.Validation("%d row(s) failed validation", len(errs)).WithDetails(errs...)
	}
	if len(out) == 0 {
		return nil, apperr.Validation("Excel file has no data rows")
	}
	return out, nil
}

func parseRow(cells []string, number int) (Row, []string) {
	row := Row{
		Number:            number,
		Category:          cell(cells, colCategory),
		Spec:              cell(cells, colSpec),
		ProductCode:       cell(cells, colProductCode),
		ProductName:       cell(cells, colProductName),
		WarehouseLocation: cell(cells, colWarehouseLocation),
	}

	var errs []string
	if row.ProductCode == "" {
		errs = append(errs, fmt.Sprintf("Row %d: 品號 (product_code) is required", number))
	}

	qty, err := ParseQuantity(cell(cells, colQuantity))
	if err != nil {
		errs = append(errs, fmt.Sprintf("Row %d: 箱數小計 (quantity) %s", number, err.Error()))
	}
	row.Quantity = qty
	return row, errs
}

// ParseQuantity accepts a strictly positive number with at most two decimals.
func ParseQuantity(raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return decimal.Zero, fmt.Errorf("is required")
	}
	qty, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("must be a valid number")
	}
	if !qty.IsPositive() {
		return decimal.Zero, fmt.Errorf("must be positive")
	}
	if !qty.Equal(qty.Truncate(2)) {
		return decimal.Zero, fmt.Errorf("allows at most 2 decimal places")
	}
	return qty, nil
}

func cell(cells []string, i int) string {
	if i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func nonEmpty(cells []string) int {
	n := 0
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}

func isEmpty(cells []string) bool {
	for i := 0; i < len(Headers) && i < len(cells); i++ {
		if strings.TrimSpace(cells[i]) != "" {
			return false
		}
	}
	return true
}
