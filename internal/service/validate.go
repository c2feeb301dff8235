package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/apperr"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/channel"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ProductValidator checks product codes against the ERP master data.
type ProductValidator interface {
	ValidateProduct(ctx context.Context, productCode string) (bool, error)
}

type productRef struct {
	Label string
	Code  string
}

const validationConcurrency = 8

// validateProducts checks every code and reports all unknown ones together.
func validateProducts(ctx context.Context, v ProductValidator, refs []productRef) error {
	var (
		mu      sync.Mutex
		invalid = make(map[int]bool)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(validationConcurrency)
	for i, ref := range refs {
		i, ref := i, ref // per-iteration copy (go directive < 1.22)
		g.Go(func() error {
			ok, err := v.ValidateProduct(gctx, ref.Code)
			if err != nil {
				return err
			}
			if !ok {
				mu.Lock()
				invalid[i] = true
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if _, ok := apperr.As(err); ok {
			return err
		}
		return apperr.Internal(err, "validate products")
	}

	if len(invalid) == 0 {
		return nil
	}
	details := make([]string, 0, len(invalid))
	for i, ref := range refs {
		i, ref := i, ref // per-iteration copy (go directive < 1.22)
		if invalid[i] {
			details = append(details, fmt.Sprintf("%s: product code %s does not exist", ref.Label, ref.Code))
		}
	}
	return apperr.Validation("%d product(s) failed ERP validation", len(details)).WithDetails(details...)
}

func validateMonth(month string) error {
	if _, err := model.ParseMonth(month); err != nil {
		return apperr.Validation("%s", err.Error())
	}
	return nil
}

// canonicalChannel validates name and resolves an alias to the stored name.
func canonicalChannel(name string) (string, error) {
	if err := validateChannel(name); err != nil {
		return "", err
	}
	c, _ := channel.Canonical(name)
	return c, nil
}

func validateChannel(name string) error {
	if name == "" {
		return apperr.Validation("channel is required")
	}
	if !channel.Valid(name) {
		return apperr.Validation("unknown channel %q", name)
	}
	return nil
}

// validateQuantity accepts a non-negative quantity with at most two decimals.
func validateQuantity(q decimal.Decimal) error {
	if q.IsNegative() {
		return apperr.Validation("quantity must not be negative")
	}
	if !q.Equal(q.Truncate(2)) {
		return apperr.Validation("quantity allows at most 2 decimal places")
	}
	return nil
}
