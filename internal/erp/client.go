// Package erp talks to the ERP inventory and sales capability and derives
// production requirements from its figures.
package erp

import (
	"context"

	"github.com/shopspring/decimal"
)

// DateLayout is the format of sales query dates.
const DateLayout = "2006-01-02"

// Client is the ERP capability consumed by the planner. Balance and sales
// lookups return zero for unknown or blank product codes.
type Client interface {
	InventoryBalance(ctx context.Context, productCode, month string) (decimal.Decimal, error)
	SalesQuantity(ctx context.Context, productCode, startDate, endDate string) (decimal.Decimal, error)
	ValidateProduct(ctx context.Context, productCode string) (bool, error)
}
