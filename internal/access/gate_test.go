package access

import (
	"context"
	"errors"
	"testing"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/apperr"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/model"
	"gorm.io/gorm"
)

type fakeMonths map[string]*model.MonthConfig

func (f fakeMonths) FindByMonth(_ context.Context, _ *gorm.DB, month string) (*model.MonthConfig, error) {
	return f[month], nil
}

type fakeOwners map[uint][]string

func (f fakeOwners) Channels(_ context.Context, _ *gorm.DB, userID uint) ([]string, error) {
	return f[userID], nil
}

type failingOwners struct{}

func (failingOwners) Channels(context.Context, *gorm.DB, uint) ([]string, error) {
	return nil, errors.New("db down")
}

func newGate() *Gate {
	months := fakeMonths{
		"202501": {Month: "202501"},
		"202502": {Month: "202502", IsClosed: true},
	}
	owners := fakeOwners{
		1: {"全家"},
		2: {"711"},
	}
	return NewGate(months, owners, "admin")
}

func TestAuthorizeMatrix(t *testing.T) {
	g := newGate()
	ctx := context.Background()

	owner := Actor{UserID: 1, Role: "sales"}
	stranger := Actor{UserID: 9, Role: "sales"}
	admin := Actor{UserID: 9, Role: "admin"}

	tests := []struct {
		name     string
		actor    Actor
		month    string
		channel  string
		wantKind apperr.Kind
		allowed  bool
	}{
		{"open and owner", owner, "202501", "全家", 0, true},
		{"open and non-owner", stranger, "202501", "全家", apperr.KindForbidden, false},
		{"closed and owner", owner, "202502", "全家", apperr.KindForbidden, false},
		{"open and admin", admin, "202501", "全家", 0, true},
		{"closed and admin", admin, "202502", "全家", apperr.KindForbidden, false},
		{"not configured", owner, "209901", "全家", apperr.KindNotConfigured, false},
		{"not configured admin", admin, "209901", "全家", apperr.KindNotConfigured, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Authorize(ctx, tt.actor, tt.month, tt.channel)
			if tt.allowed {
				if err != nil {
					t.Fatalf("expected allowed, got %v", err)
				}
				return
			}
			if !apperr.Is(err, tt.wantKind) {
				t.Fatalf("expected %s, got %v", tt.wantKind, err)
			}
		})
	}
}

func TestForbiddenCodes(t *testing.T) {
	g := newGate()
	ctx := context.Background()

	err := g.Authorize(ctx, Actor{UserID: 1}, "202502", "全家")
	if e, _ := apperr.As(err); e == nil || e.Code != "month_closed" {
		t.Errorf("expected month_closed, got %v", err)
	}
	err = g.Authorize(ctx, Actor{UserID: 1}, "202501", "711")
	if e, _ := apperr.As(err); e == nil || e.Code != "channel_not_owned" {
		t.Errorf("expected channel_not_owned, got %v", err)
	}
}

func TestOwnershipFollowsAliases(t *testing.T) {
	g := newGate()
	if err := g.CheckChannel(context.Background(), Actor{UserID: 2}, "7-11"); err != nil {
		t.Errorf("owner of 711 should own its alias 7-11: %v", err)
	}
}

func TestCanReadIgnoresMonthState(t *testing.T) {
	g := newGate()
	if err := g.CanRead(context.Background(), Actor{UserID: 1}, "全家"); err != nil {
		t.Errorf("owner should read: %v", err)
	}
	if err := g.CanRead(context.Background(), Actor{UserID: 1}, "愛買"); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("non-owner should not read: %v", err)
	}
}

func TestOwnerLookupFailure(t *testing.T) {
	g := NewGate(fakeMonths{"202501": {Month: "202501"}}, failingOwners{}, "admin")
	if err := g.Authorize(context.Background(), Actor{UserID: 1}, "202501", "全家"); err == nil {
		t.Error("expected owner lookup failure to surface")
	}
}
