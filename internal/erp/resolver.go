package erp

import (
	"context"
	"time"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/apperr"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Item is one aggregated forecast quantity to resolve.
type Item struct {
	ProductCode string
	Forecast    decimal.Decimal
}

// Demand is the resolved production requirement for one product.
type Demand struct {
	ProductCode      string
	Forecast         decimal.Decimal
	InventoryBalance decimal.Decimal
	SalesQuantity    decimal.Decimal
	Production       decimal.Decimal
}

// ProductionSubtotal is forecast minus inventory minus realised sales.
func ProductionSubtotal(forecast, inventory, sales decimal.Decimal) decimal.Decimal {
	return forecast.Sub(inventory).Sub(sales)
}

// DateRange returns the sales query window. Blank bounds default to the first
// and last calendar day of month.
func DateRange(month, startDate, endDate string) (string, string, error) {
	first, err := model.ParseMonth(month)
	if err != nil {
		return "", "", apperr.Validation("%s", err.Error())
	}
	last := first.AddDate(0, 1, -1)

	if startDate == "" {
		startDate = first.Format(DateLayout)
	}
	if endDate == "" {
		endDate = last.Format(DateLayout)
	}

	start, err := time.Parse(DateLayout, startDate)
	if err != nil {
		return "", "", apperr.Validation("start date %q must use the YYYY-MM-DD format", startDate)
	}
	end, err := time.Parse(DateLayout, endDate)
	if err != nil {
		return "", "", apperr.Validation("end date %q must use the YYYY-MM-DD format", endDate)
	}
	if start.After(end) {
		return "", "", apperr.Validation("start date %s is after end date %s", startDate, endDate)
	}
	return startDate, endDate, nil
}

// Resolver makes two ERP calls per product with bounded concurrency.
type Resolver struct {
	client      Client
	concurrency int
	log         *zap.Logger
}

// NewResolver creates a resolver over client.
func NewResolver(client Client, concurrency int, log *zap.Logger) *Resolver {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{client: client, concurrency: concurrency, log: log}
}

// Resolve returns one Demand per item, in input order.
func (r *Resolver) Resolve(ctx context.Context, month, startDate, endDate string, items []Item) ([]Demand, error) {
	out := make([]Demand, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, item := range items {
		i, item := i, item // per-iteration copy (go directive < 1.22)
		g.Go(func() error {
			inventory, err := r.client.InventoryBalance(gctx, item.ProductCode, month)
			if err != nil {
				return err
			}
			sales, err := r.client.SalesQuantity(gctx, item.ProductCode, startDate, endDate)
			if err != nil {
				return err
			}
			out[i] = Demand{
				ProductCode:      item.ProductCode,
				Forecast:         item.Forecast,
				InventoryBalance: inventory,
				SalesQuantity:    sales,
				Production:       ProductionSubtotal(item.Forecast, inventory, sales),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.log.Error("ERP resolution failed", zap.String("month", month), zap.Error(err))
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		return nil, apperr.Internal(err, "resolve ERP figures for %s", month)
	}

	r.log.Debug("Resolved ERP figures",
		zap.String("month", month),
		zap.Int("products", len(items)),
		zap.String("start_date", startDate),
		zap.String("end_date", endDate))
	return out, nil
}
