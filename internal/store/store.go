// Package store persists forecasts, snapshots, month gates and channel
// ownership with gorm. Every method takes an optional transaction; a nil tx
// runs against the store's own connection.
package store

import (
	"errors"
	"time"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/apperr"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/metrics"
	"gorm.io/gorm"
)

func pick(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

func track(op string) func() {
	start := time.Now()
	done := metrics.TrackDBOperation(op)
	return func() { done(start) }
}

// translate maps driver errors onto the planner taxonomy.
func translate(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		e := apperr.Conflict(format, args...)
		e.Err = err
		return e
	}
	return apperr.Internal(err, format, args...)
}
