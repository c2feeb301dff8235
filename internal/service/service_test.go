package service

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/access"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/channel"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/erp"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/excel"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/model"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/pdca"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/store"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/testutil"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/version"
	"github.com/xuri/excelize/v2"
)

type fakeProducts map[string]bool

func (f fakeProducts) ValidateProduct(_ context.Context, code string) (bool, error) {
	return !f[code], nil
}

type recordingDispatcher struct {
	mu   sync.Mutex
	reqs []pdca.Request
}

func (d *recordingDispatcher) Dispatch(req pdca.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reqs = append(d.reqs, req)
}

type harness struct {
	months     *store.MonthStore
	forecasts  *store.ForecastStore
	snapshots  *store.InventoryStore
	owners     *store.OwnerStore
	forecast   *ForecastService
	integrate  *IntegrationService
	inventory  *InventoryService
	month      *MonthService
	ownership  *OwnershipService
	locker     *store.LocalLocker
	dispatcher *recordingDispatcher
}

var (
	owner    = access.Actor{UserID: 1, Role: "sales"}
	stranger = access.Actor{UserID: 2, Role: "sales"}
	admin    = access.Actor{UserID: 3, Role: "admin"}
)

func newHarness(t *testing.T, invalid ...string) *harness {
	t.Helper()
	db := testutil.NewDB(t)

	clock, err := version.NewClock(1)
	if err != nil {
		t.Fatalf("NewClock: %v", err)
	}
	products := fakeProducts{}
	for _, code := range invalid {
		products[code] = true
	}

	h := &harness{
		months:     store.NewMonthStore(db),
		forecasts:  store.NewForecastStore(db),
		snapshots:  store.NewInventoryStore(db),
		owners:     store.NewOwnerStore(db),
		locker:     store.NewLocalLocker(),
		dispatcher: &recordingDispatcher{},
	}
	gate := access.NewGate(h.months, h.owners, "admin")
	aggregator := channel.NewAggregator(nil)
	resolver := erp.NewResolver(erp.NewStubClient(), 4, nil)

	h.forecast = NewForecastService(h.forecasts, gate, products, clock, h.locker, nil)
	h.integrate = NewIntegrationService(h.forecasts, aggregator, nil)
	h.inventory = NewInventoryService(h.forecasts, h.snapshots, aggregator, resolver, clock, h.locker, h.dispatcher, nil)
	h.month = NewMonthService(h.months, 10, nil, nil)
	h.ownership = NewOwnershipService(h.owners, nil)

	ctx := context.Background()
	if _, err := h.month.CreateMonths(ctx, "202501", "202502"); err != nil {
		t.Fatalf("CreateMonths: %v", err)
	}
	if _, err := h.ownership.Assign(ctx, owner.UserID, []string{"全家"}); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	return h
}

func (h *harness) closeMonth(t *testing.T, month string) {
	t.Helper()
	cfg, err := h.months.FindByMonth(context.Background(), nil, month)
	if err != nil || cfg == nil {
		t.Fatalf("FindByMonth(%s): %v", month, err)
	}
	closed := true
	if _, err := h.month.UpdateMonth(context.Background(), cfg.ID, UpdateMonthRequest{IsClosed: &closed}); err != nil {
		t.Fatalf("UpdateMonth: %v", err)
	}
}

func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(excel.Headers))
	for i, h := range excel.Headers {
		header[i] = h
	}
	all := append([][]interface{}{header}, rows...)
	for i, r := range all {
		ref, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", ref, &r); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf
}

func seedLine(t *testing.T, h *harness, ch, code, category, ver string, versionID int64, qty string) {
	t.Helper()
	line := &model.ForecastLine{
		Month:       "202501",
		Channel:     ch,
		Category:    category,
		ProductCode: code,
		ProductName: "name " + code,
		Quantity:    dec(t, qty),
		Version:     ver,
		VersionID:   versionID,
	}
	if err := h.forecasts.Create(context.Background(), nil, line); err != nil {
		t.Fatalf("seed line: %v", err)
	}
}
