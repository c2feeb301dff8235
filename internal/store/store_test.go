package store

import (
	"context"
	"testing"
	"time"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/apperr"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/model"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/testutil"
	"github.com/shopspring/decimal"
)

func TestInventoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewInventoryStore(testutil.NewDB(t))

	rows := []*model.InventorySnapshot{
		{Month: "202501", ProductCode: "B", ForecastQuantity: decimal.NewFromInt(5), Version: "v1", VersionID: 1},
		{Month: "202501", ProductCode: "A", ForecastQuantity: decimal.NewFromInt(7), Version: "v1", VersionID: 1},
	}
	if err := s.CreateBatch(ctx, nil, rows); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	override := &model.InventorySnapshot{
		Month: "202501", ProductCode: "A", Version: "v2", VersionID: 2,
		ModifiedSubtotal: decimal.NewNullDecimal(decimal.RequireFromString("12.5")),
	}
	if err := s.Create(ctx, nil, override); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.FindByMonthAndVersion(ctx, nil, "202501", "v1")
	if err != nil || len(got) != 2 || got[0].ProductCode != "A" {
		t.Fatalf("expected v1 rows by product code, got %+v (%v)", got, err)
	}
	if got[0].ModifiedSubtotal.Valid {
		t.Error("original rows must not carry an override")
	}

	loaded, err := s.FindByID(ctx, nil, override.ID)
	if err != nil || loaded == nil || !loaded.ModifiedSubtotal.Valid || loaded.ModifiedSubtotal.Decimal.StringFixed(2) != "12.50" {
		t.Errorf("unexpected override row %+v (%v)", loaded, err)
	}

	versions, err := s.DistinctVersions(ctx, nil, "202501")
	if err != nil || len(versions) != 2 || versions[0] != "v2" {
		t.Errorf("expected [v2 v1], got %v (%v)", versions, err)
	}
}

func TestMonthStore(t *testing.T) {
	ctx := context.Background()
	s := NewMonthStore(testutil.NewDB(t))

	cfgs := []*model.MonthConfig{
		{Month: "202501", AutoCloseDay: 10},
		{Month: "202502", AutoCloseDay: 15},
		{Month: "202503", AutoCloseDay: 10, IsClosed: true},
	}
	if err := s.CreateBatch(ctx, nil, cfgs); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	existing, err := s.Existing(ctx, nil, []string{"202501", "202504"})
	if err != nil || !existing["202501"] || existing["202504"] {
		t.Errorf("unexpected existing set %v (%v)", existing, err)
	}

	list, err := s.List(ctx, nil)
	if err != nil || len(list) != 3 || list[0].Month != "202503" {
		t.Errorf("expected months newest first, got %+v (%v)", list, err)
	}

	open, err := s.FindOpenByAutoCloseDay(ctx, nil, 10)
	if err != nil || len(open) != 1 || open[0].Month != "202501" {
		t.Errorf("expected only 202501, got %+v (%v)", open, err)
	}

	cfg, _ := s.FindByMonth(ctx, nil, "202501")
	cfg.Close(time.Now())
	if err := s.Save(ctx, nil, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reloaded, _ := s.FindByID(ctx, nil, cfg.ID)
	if !reloaded.IsClosed || reloaded.ClosedAt == nil {
		t.Errorf("expected closed month, got %+v", reloaded)
	}

	if missing, err := s.FindByMonth(ctx, nil, "209912"); err != nil || missing != nil {
		t.Errorf("expected nil for unknown month, got %+v (%v)", missing, err)
	}

	dup := []*model.MonthConfig{{Month: "202501", AutoCloseDay: 10}}
	if err := s.CreateBatch(ctx, nil, dup); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("expected conflict for duplicate month, got %v", err)
	}
}

func TestOwnerStoreReplace(t *testing.T) {
	ctx := context.Background()
	s := NewOwnerStore(testutil.NewDB(t))

	if err := s.Replace(ctx, 7, []string{"全家", "711"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := s.Replace(ctx, 7, []string{"愛買"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := s.Replace(ctx, 8, []string{"全家"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	channels, err := s.Channels(ctx, nil, 7)
	if err != nil || len(channels) != 1 || channels[0] != "愛買" {
		t.Errorf("expected [愛買], got %v (%v)", channels, err)
	}
}

func TestMaterialDemandReplaceMonth(t *testing.T) {
	ctx := context.Background()
	s := NewMaterialDemandStore(testutil.NewDB(t))

	first := []*model.MaterialDemand{
		{Month: "202501", ProductCode: "A", MaterialCode: "M1", DemandQuantity: decimal.NewFromInt(1)},
		{Month: "202501", ProductCode: "A", MaterialCode: "M2", DemandQuantity: decimal.NewFromInt(2)},
	}
	if err := s.ReplaceMonth(ctx, "202501", first); err != nil {
		t.Fatalf("ReplaceMonth: %v", err)
	}
	second := []*model.MaterialDemand{
		{Month: "202501", ProductCode: "B", MaterialCode: "M9", DemandQuantity: decimal.NewFromInt(3)},
	}
	if err := s.ReplaceMonth(ctx, "202501", second); err != nil {
		t.Fatalf("ReplaceMonth: %v", err)
	}

	rows, err := s.FindByMonth(ctx, nil, "202501")
	if err != nil || len(rows) != 1 || rows[0].MaterialCode != "M9" {
		t.Errorf("expected only the second batch, got %+v (%v)", rows, err)
	}
}
