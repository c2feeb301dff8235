package channel

import (
	"github.com/ServtechRD/SinkerProject26-sub000/internal/model"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Product is one consolidated row: per-channel quantities for a product
// code within one (month, version).
type Product struct {
	ProductCode       string                 `json:"product_code"`
	ProductName       string                 `json:"product_name"`
	Category          string                 `json:"category"`
	Spec              string                 `json:"spec"`
	WarehouseLocation string                 `json:"warehouse_location"`
	Quantities        [Count]decimal.Decimal `json:"quantities"`
	Subtotal          decimal.Decimal        `json:"subtotal"`
}

// Mismatch records a line whose descriptive field differs from the first
// line seen for the same product code.
type Mismatch struct {
	LineID      uint   `json:"line_id"`
	ProductCode string `json:"product_code"`
	Field       string `json:"field"`
	Kept        string `json:"kept"`
	Ignored     string `json:"ignored"`
}

// Result is the output of Aggregate.
type Result struct {
	Products   map[string]*Product
	Dropped    []model.ForecastLine
	Mismatches []Mismatch
}

// Aggregator sums forecast lines into channel buckets.
type Aggregator struct {
	log   *zap.Logger
	quiet bool
}

// NewAggregator creates an aggregator that reports anomalies to log.
func NewAggregator(log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{log: log}
}

// Quiet returns an aggregator that neither logs nor counts anomalies. It is
// used for comparison baselines whose anomalies were reported when they were
// current.
func (a *Aggregator) Quiet() *Aggregator {
	return &Aggregator{log: zap.NewNop(), quiet: true}
}

func (a *Aggregator) report(kind string) {
	if !a.quiet {
		metrics.RecordAggregationAnomaly(kind)
	}
}

// Aggregate groups lines by product code. Descriptive fields come from the
// first line seen for a code; every line contributes its quantity. Lines with
// an unmapped channel are dropped and reported.
func (a *Aggregator) Aggregate(lines []model.ForecastLine) *Result {
	res := &Result{Products: make(map[string]*Product)}

	for _, line := range lines {
		bucket, ok := Lookup(line.Channel)
		if !ok {
			a.log.Warn("Dropping forecast line with unmapped channel",
				zap.Uint("line_id", line.ID),
				zap.String("channel", line.Channel),
				zap.String("product_code", line.ProductCode),
				zap.String("version", line.Version))
			a.report("unmapped_channel")
			res.Dropped = append(res.Dropped, line)
			continue
		}

		p, seen := res.Products[line.ProductCode]
		if !seen {
			p = &Product{
				ProductCode:       line.ProductCode,
				ProductName:       line.ProductName,
				Category:          line.Category,
				Spec:              line.Spec,
				WarehouseLocation: line.WarehouseLocation,
			}
			res.Products[line.ProductCode] = p
		} else {
			res.Mismatches = append(res.Mismatches, a.compare(p, line)...)
		}

		p.Quantities[bucket] = p.Quantities[bucket].Add(line.Quantity)
		p.Subtotal = p.Subtotal.Add(line.Quantity)
	}

	return res
}

func (a *Aggregator) compare(p *Product, line model.ForecastLine) []Mismatch {
	fields := []struct {
		name      string
		kept, got string
	}{
		{"product_name", p.ProductName, line.ProductName},
		{"category", p.Category, line.Category},
		{"spec", p.Spec, line.Spec},
		{"warehouse_location", p.WarehouseLocation, line.WarehouseLocation},
	}

	var out []Mismatch
	for _, f := range fields {
		if f.kept == f.got {
			continue
		}
		a.log.Warn("Descriptive field differs across channels",
			zap.String("product_code", p.ProductCode),
			zap.String("field", f.name),
			zap.String("kept", f.kept),
			zap.String("ignored", f.got),
			zap.String("channel", line.Channel))
		a.report("descriptive_mismatch")
		out = append(out, Mismatch{
			LineID:      line.ID,
			ProductCode: p.ProductCode,
			Field:       f.name,
			Kept:        f.kept,
			Ignored:     f.got,
		})
	}
	return out
}
