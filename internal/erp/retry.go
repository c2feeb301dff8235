package erp

import (
	"context"
	"time"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/apperr"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Retrying wraps a Client with bounded exponential backoff. Balance and sales
// lookups that still fail after the last retry fall back to zero and are
// logged as anomalies. A cancelled or expired request context is returned
// as an internal error without further attempts.
type Retrying struct {
	next       Client
	maxRetries int
	backoff    time.Duration
	log        *zap.Logger
}

// NewRetrying wraps next.
func NewRetrying(next Client, maxRetries int, backoff time.Duration, log *zap.Logger) *Retrying {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Retrying{next: next, maxRetries: maxRetries, backoff: backoff, log: log}
}

func (r *Retrying) do(ctx context.Context, call string, fn func() error) error {
	var err error
	delay := r.backoff
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		start := time.Now()
		err = fn()
		metrics.TrackERPCall(call, start, err)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return apperr.Internal(ctx.Err(), "erp %s aborted", call)
		}
		if attempt == r.maxRetries {
			break
		}
		r.log.Debug("Retrying ERP call", zap.String("call", call), zap.Int("attempt", attempt+1), zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return apperr.Internal(ctx.Err(), "erp %s aborted", call)
		case <-timer.C:
		}
		delay *= 2
	}
	return err
}

func (r *Retrying) quantity(ctx context.Context, call, productCode string, fn func() (decimal.Decimal, error)) (decimal.Decimal, error) {
	var qty decimal.Decimal
	err := r.do(ctx, call, func() error {
		var err error
		qty, err = fn()
		return err
	})
	if err == nil {
		return qty, nil
	}
	if ctx.Err() != nil {
		return decimal.Zero, err
	}

	r.log.Warn("ERP lookup failed, using zero",
		zap.String("call", call),
		zap.String("product_code", productCode),
		zap.Int("attempts", r.maxRetries+1),
		zap.Error(err))
	metrics.RecordERPAnomaly(call)
	return decimal.Zero, nil
}

func (r *Retrying) InventoryBalance(ctx context.Context, productCode, month string) (decimal.Decimal, error) {
	return r.quantity(ctx, "inventory_balance", productCode, func() (decimal.Decimal, error) {
		return r.next.InventoryBalance(ctx, productCode, month)
	})
}

func (r *Retrying) SalesQuantity(ctx context.Context, productCode, startDate, endDate string) (decimal.Decimal, error) {
	return r.quantity(ctx, "sales_quantity", productCode, func() (decimal.Decimal, error) {
		return r.next.SalesQuantity(ctx, productCode, startDate, endDate)
	})
}

// ValidateProduct has no safe default, so exhausted retries are an internal error.
func (r *Retrying) ValidateProduct(ctx context.Context, productCode string) (bool, error) {
	var ok bool
	err := r.do(ctx, "validate_product", func() error {
		var err error
		ok, err = r.next.ValidateProduct(ctx, productCode)
		return err
	})
	if err != nil {
		if _, typed := apperr.As(err); typed {
			return false, err
		}
		return false, apperr.Internal(err, "validate product %s", productCode)
	}
	return ok, nil
}
