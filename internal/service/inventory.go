package service

import (
	"context"
	"sort"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/apperr"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/channel"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/erp"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/model"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/pdca"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/reconcile"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/store"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/version"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InventoryQuery selects a saved snapshot version or asks for a fresh one.
type InventoryQuery struct {
	Month     string
	StartDate string
	EndDate   string
	Version   string
}

// InventoryService produces and revises production plans.
type InventoryService struct {
	forecasts  *store.ForecastStore
	snapshots  *store.InventoryStore
	aggregator *channel.Aggregator
	resolver   *erp.Resolver
	clock      *version.Clock
	locker     store.Locker
	dispatcher pdca.Dispatcher
	log        *zap.Logger
}

// NewInventoryService wires the inventory integration.
func NewInventoryService(forecasts *store.ForecastStore, snapshots *store.InventoryStore, aggregator *channel.Aggregator,
	resolver *erp.Resolver, clock *version.Clock, locker store.Locker, dispatcher pdca.Dispatcher, log *zap.Logger) *InventoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &InventoryService{
		forecasts:  forecasts,
		snapshots:  snapshots,
		aggregator: aggregator,
		resolver:   resolver,
		clock:      clock,
		locker:     locker,
		dispatcher: dispatcher,
		log:        log,
	}
}

// lockMonth holds the snapshot lock of month and issues a version that sorts
// after every snapshot version already stored for it.
func (s *InventoryService) lockMonth(ctx context.Context, month string) (version.Stamp, func(), error) {
	release, err := s.locker.Acquire(ctx, store.SnapshotLockKey(month))
	if err != nil {
		return version.Stamp{}, nil, err
	}
	versions, err := s.snapshots.DistinctVersions(ctx, nil, month)
	if err != nil {
		release()
		return version.Stamp{}, nil, err
	}
	s.clock.Observe(versions...)
	return s.clock.Snapshot(), release, nil
}

// Query returns a saved snapshot when q.Version is set. Otherwise it builds a
// new snapshot from the month's latest forecast version, persists it and
// hands the plan to PDCA.
func (s *InventoryService) Query(ctx context.Context, q InventoryQuery) ([]model.InventorySnapshot, error) {
	if err := validateMonth(q.Month); err != nil {
		return nil, err
	}
	if q.Version != "" {
		versions, err := s.snapshots.DistinctVersions(ctx, nil, q.Month)
		if err != nil {
			return nil, err
		}
		if !reconcile.Contains(versions, q.Version) {
			return nil, apperr.NotFound("inventory version %s not found for month %s", q.Version, q.Month)
		}
		return s.snapshots.FindByMonthAndVersion(ctx, nil, q.Month, q.Version)
	}

	startDate, endDate, err := erp.DateRange(q.Month, q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}

	versions, err := s.forecasts.DistinctVersions(ctx, nil, q.Month)
	if err != nil {
		return nil, err
	}
	source, ok := reconcile.Latest(versions)
	if !ok {
		return []model.InventorySnapshot{}, nil
	}
	lines, err := s.forecasts.FindByMonthAndVersion(ctx, nil, q.Month, source)
	if err != nil {
		return nil, err
	}
	agg := s.aggregator.Aggregate(lines)

	products := make([]*channel.Product, 0, len(agg.Products))
	for _, p := range agg.Products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ProductCode < products[j].ProductCode })

	items := make([]erp.Item, len(products))
	for i, p := range products {
		items[i] = erp.Item{ProductCode: p.ProductCode, Forecast: p.Subtotal}
	}
	demands, err := s.resolver.Resolve(ctx, q.Month, startDate, endDate, items)
	if err != nil {
		return nil, err
	}

	stamp, release, err := s.lockMonth(ctx, q.Month)
	if err != nil {
		return nil, err
	}
	defer release()

	rows := make([]*model.InventorySnapshot, len(products))
	for i, p := range products {
		d := demands[i]
		rows[i] = &model.InventorySnapshot{
			Month:              q.Month,
			ProductCode:        p.ProductCode,
			ProductName:        p.ProductName,
			Category:           p.Category,
			Spec:               p.Spec,
			WarehouseLocation:  p.WarehouseLocation,
			SalesQuantity:      d.SalesQuantity,
			InventoryBalance:   d.InventoryBalance,
			ForecastQuantity:   d.Forecast,
			ProductionSubtotal: d.Production,
			Version:            stamp.Label,
			VersionID:          stamp.ID,
			SourceVersion:      source,
			QueryStartDate:     startDate,
			QueryEndDate:       endDate,
		}
	}
	if len(rows) > 0 {
		if err := s.snapshots.CreateBatch(ctx, nil, rows); err != nil {
			return nil, err
		}
	}

	logger.For(ctx, s.log).Info("Inventory snapshot created",
		zap.String("month", q.Month),
		zap.String("version", stamp.Label),
		zap.String("source_version", source),
		zap.Int("products", len(rows)),
		zap.String("start_date", startDate),
		zap.String("end_date", endDate))

	s.dispatch(q.Month, stamp.Label, rows)

	out := make([]model.InventorySnapshot, len(rows))
	for i, r := range rows {
		out[i] = *r
	}
	return out, nil
}

// dispatch sends every product with a positive plan to PDCA, due on the
// first day of month.
func (s *InventoryService) dispatch(month, ver string, rows []*model.InventorySnapshot) {
	if s.dispatcher == nil {
		return
	}
	first, err := model.ParseMonth(month)
	if err != nil {
		return
	}
	demandDate := first.Format(erp.DateLayout)

	req := pdca.Request{Month: month, SourceVersion: ver}
	for _, r := range rows {
		qty := r.EffectiveSubtotal()
		if !qty.IsPositive() {
			continue
		}
		req.Schedule = append(req.Schedule, pdca.ScheduleItem{
			ProductCode: r.ProductCode,
			Quantity:    qty,
			DemandDate:  demandDate,
		})
	}
	if len(req.Schedule) == 0 {
		return
	}
	s.dispatcher.Dispatch(req)
}

// UpdateModifiedSubtotal writes a copy of row id under a new version with
// the override set. The original row is left untouched.
func (s *InventoryService) UpdateModifiedSubtotal(ctx context.Context, id uint, value decimal.Decimal) (*model.InventorySnapshot, error) {
	if !value.Equal(value.Truncate(2)) {
		return nil, apperr.Validation("modified subtotal allows at most 2 decimal places")
	}
	orig, err := s.snapshots.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if orig == nil {
		return nil, apperr.NotFound("inventory row %d not found", id)
	}

	stamp, release, err := s.lockMonth(ctx, orig.Month)
	if err != nil {
		return nil, err
	}
	defer release()

	row := *orig
	row.ID = 0
	row.Version = stamp.Label
	row.VersionID = stamp.ID
	row.ModifiedSubtotal = decimal.NewNullDecimal(value)
	row.CreatedAt = stamp.At
	row.UpdatedAt = stamp.At
	if err := s.snapshots.Create(ctx, nil, &row); err != nil {
		return nil, err
	}

	logger.For(ctx, s.log).Info("Inventory subtotal modified",
		zap.Uint("source_id", id),
		zap.Uint("id", row.ID),
		zap.String("version", row.Version),
		zap.String("modified_subtotal", value.String()))

	return &row, nil
}

// Versions lists the month's snapshot versions, most recent first.
func (s *InventoryService) Versions(ctx context.Context, month string) ([]string, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	return s.snapshots.DistinctVersions(ctx, nil, month)
}
