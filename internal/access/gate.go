// Package access enforces the month gate and channel ownership around every
// forecast mutation.
package access

import (
	"context"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/apperr"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/channel"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/model"
	"gorm.io/gorm"
)

// Actor is the authenticated caller.
type Actor struct {
	UserID uint
	Role   string
}

// MonthReader loads month gates.
type MonthReader interface {
	FindByMonth(ctx context.Context, tx *gorm.DB, month string) (*model.MonthConfig, error)
}

// OwnerReader loads the channels a user owns.
type OwnerReader interface {
	Channels(ctx context.Context, tx *gorm.DB, userID uint) ([]string, error)
}

// Gate answers whether an actor may act on a (month, channel).
type Gate struct {
	months    MonthReader
	owners    OwnerReader
	adminRole string
}

// NewGate creates a gate. Actors with adminRole skip the ownership check.
func NewGate(months MonthReader, owners OwnerReader, adminRole string) *Gate {
	return &Gate{months: months, owners: owners, adminRole: adminRole}
}

// IsAdmin reports whether actor holds the admin role.
func (g *Gate) IsAdmin(actor Actor) bool {
	return g.adminRole != "" && actor.Role == g.adminRole
}

// CheckMonth requires month to be configured and open.
func (g *Gate) CheckMonth(ctx context.Context, month string) (*model.MonthConfig, error) {
	cfg, err := g.months.FindByMonth(ctx, nil, month)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, apperr.NotConfigured("month %s is not configured", month)
	}
	if cfg.IsClosed {
		return nil, apperr.Forbidden("month_closed", "month %s is closed", month)
	}
	return cfg, nil
}

// CheckChannel requires actor to own ch, unless actor is an admin. Owned
// channels and ch are compared by their canonical names.
func (g *Gate) CheckChannel(ctx context.Context, actor Actor, ch string) error {
	if g.IsAdmin(actor) {
		return nil
	}
	owns, err := g.owns(ctx, actor.UserID, ch)
	if err != nil {
		return err
	}
	if !owns {
		return apperr.Forbidden("channel_not_owned", "user %d does not own channel %s", actor.UserID, ch)
	}
	return nil
}

// Authorize runs the month check, then the ownership check. Admins bypass
// only ownership.
func (g *Gate) Authorize(ctx context.Context, actor Actor, month, ch string) error {
	if _, err := g.CheckMonth(ctx, month); err != nil {
		return err
	}
	return g.CheckChannel(ctx, actor, ch)
}

// CanRead reports whether actor may read the forecasts of ch. Reads are not
// gated by the month state.
func (g *Gate) CanRead(ctx context.Context, actor Actor, ch string) error {
	return g.CheckChannel(ctx, actor, ch)
}

func (g *Gate) owns(ctx context.Context, userID uint, ch string) (bool, error) {
	channels, err := g.owners.Channels(ctx, nil, userID)
	if err != nil {
		return false, err
	}

	target, known := channel.Canonical(ch)
	for _, owned := range channels {
		if owned == ch {
			return true, nil
		}
		if c, ok := channel.Canonical(owned); known && ok && c == target {
			return true, nil
		}
	}
	return false, nil
}
