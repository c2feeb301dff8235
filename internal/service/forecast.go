// Package service implements the forecast planning operations on top of the
// stores, the access gate and the external collaborators.
package service

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/access"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/apperr"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/excel"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/model"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/store"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/version"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/logger"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateForecastRequest is a manual single-row entry.
type CreateForecastRequest struct {
	Month             string
	Channel           string
	Category          string
	Spec              string
	ProductCode       string
	ProductName       string
	WarehouseLocation string
	Quantity          decimal.Decimal
}

// UploadRequest is a spreadsheet replacing one (month, channel).
type UploadRequest struct {
	Month    string
	Channel  string
	FileName string
	File     io.Reader
}

// UploadResult summarises an accepted upload.
type UploadResult struct {
	RowCount   int       `json:"row_count"`
	Version    string    `json:"version"`
	UploadedAt time.Time `json:"uploaded_at"`
	Month      string    `json:"month"`
	Channel    string    `json:"channel"`
}

// ForecastService handles forecast writes and per-channel reads.
type ForecastService struct {
	forecasts *store.ForecastStore
	gate      *access.Gate
	products  ProductValidator
	clock     *version.Clock
	locker    store.Locker
	log       *zap.Logger
}

// NewForecastService wires the forecast service.
func NewForecastService(forecasts *store.ForecastStore, gate *access.Gate, products ProductValidator,
	clock *version.Clock, locker store.Locker, log *zap.Logger) *ForecastService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ForecastService{
		forecasts: forecasts,
		gate:      gate,
		products:  products,
		clock:     clock,
		locker:    locker,
		log:       log,
	}
}

func (s *ForecastService) lock(ctx context.Context, month, ch string) (func(), error) {
	release, err := s.locker.Acquire(ctx, store.UploadLockKey(month, ch))
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			metrics.UploadLockContentionCounter.Inc()
		}
		return nil, err
	}
	return release, nil
}

// stamp issues a version for (month, ch) that sorts after every version
// already stored for it, including those stamped by other replicas. The
// caller holds the channel lock.
func (s *ForecastService) stamp(ctx context.Context, month, ch string) (version.Stamp, error) {
	versions, err := s.forecasts.ChannelVersions(ctx, nil, month, ch)
	if err != nil {
		return version.Stamp{}, err
	}
	labels := make([]string, len(versions))
	for i, v := range versions {
		labels[i] = v.Version
	}
	s.clock.Observe(labels...)
	return s.clock.Channel(ch), nil
}

// Create stores one manually entered row under a fresh channel version.
func (s *ForecastService) Create(ctx context.Context, actor access.Actor, req CreateForecastRequest) (line *model.ForecastLine, err error) {
	defer func() { metrics.RecordForecastOperation("create", err) }()

	req.ProductCode = strings.TrimSpace(req.ProductCode)
	if err := validateMonth(req.Month); err != nil {
		return nil, err
	}
	if req.Channel, err = canonicalChannel(req.Channel); err != nil {
		return nil, err
	}
	if req.ProductCode == "" {
		return nil, apperr.Validation("product code is required")
	}
	if err := validateQuantity(req.Quantity); err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, actor, req.Month, req.Channel); err != nil {
		return nil, err
	}
	if err := validateProducts(ctx, s.products, []productRef{{Label: "product", Code: req.ProductCode}}); err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, req.Month, req.Channel)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.forecasts.FindOne(ctx, nil, req.Month, req.Channel, req.ProductCode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("forecast for month %s, channel %s, product %s already exists",
			req.Month, req.Channel, req.ProductCode)
	}

	stamp, err := s.stamp(ctx, req.Month, req.Channel)
	if err != nil {
		return nil, err
	}
	line = &model.ForecastLine{
		Month:             req.Month,
		Channel:           req.Channel,
		Category:          req.Category,
		Spec:              req.Spec,
		ProductCode:       req.ProductCode,
		ProductName:       req.ProductName,
		WarehouseLocation: req.WarehouseLocation,
		Quantity:          req.Quantity,
		Version:           stamp.Label,
		VersionID:         stamp.ID,
		IsModified:        true,
	}
	if err := s.forecasts.Create(ctx, nil, line); err != nil {
		return nil, err
	}

	logger.For(ctx, s.log).Info("Forecast created",
		zap.Uint("id", line.ID),
		zap.String("month", line.Month),
		zap.String("channel", line.Channel),
		zap.String("product_code", line.ProductCode),
		zap.String("version", line.Version))
	return line, nil
}

// Update changes the quantity of one row and stamps it with a fresh version.
func (s *ForecastService) Update(ctx context.Context, actor access.Actor, id uint, quantity decimal.Decimal) (line *model.ForecastLine, err error) {
	defer func() { metrics.RecordForecastOperation("update", err) }()

	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	line, err = s.forecasts.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, apperr.NotFound("forecast %d not found", id)
	}
	if err := s.gate.Authorize(ctx, actor, line.Month, line.Channel); err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, line.Month, line.Channel)
	if err != nil {
		return nil, err
	}
	defer release()

	stamp, err := s.stamp(ctx, line.Month, line.Channel)
	if err != nil {
		return nil, err
	}
	line.Quantity = quantity
	line.Version = stamp.Label
	line.VersionID = stamp.ID
	line.IsModified = true
	if err := s.forecasts.Save(ctx, nil, line); err != nil {
		return nil, err
	}

	logger.For(ctx, s.log).Info("Forecast updated",
		zap.Uint("id", line.ID),
		zap.String("quantity", quantity.String()),
		zap.String("version", line.Version))
	return line, nil
}

// Delete removes one row permanently.
func (s *ForecastService) Delete(ctx context.Context, actor access.Actor, id uint) (err error) {
	defer func() { metrics.RecordForecastOperation("delete", err) }()

	line, err := s.forecasts.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}
	if line == nil {
		return apperr.NotFound("forecast %d not found", id)
	}
	if err := s.gate.Authorize(ctx, actor, line.Month, line.Channel); err != nil {
		return err
	}

	release, err := s.lock(ctx, line.Month, line.Channel)
	if err != nil {
		return err
	}
	defer release()

	if err := s.forecasts.Delete(ctx, nil, id); err != nil {
		return err
	}
	logger.For(ctx, s.log).Info("Forecast deleted",
		zap.Uint("id", id),
		zap.String("month", line.Month),
		zap.String("channel", line.Channel))
	return nil
}

// Upload replaces every row of (month, channel) with the workbook contents.
// Aliases are stored, locked and replaced under the canonical channel name.
func (s *ForecastService) Upload(ctx context.Context, actor access.Actor, req UploadRequest) (res *UploadResult, err error) {
	defer func() { metrics.RecordForecastOperation("upload", err) }()

	if req.Channel, err = canonicalChannel(req.Channel); err != nil {
		return nil, err
	}
	if err := validateMonth(req.Month); err != nil {
		return nil, err
	}
	if err := excel.ValidateFileName(req.FileName); err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, actor, req.Month, req.Channel); err != nil {
		return nil, err
	}

	rows, err := excel.Parse(req.File)
	if err != nil {
		if e, ok := apperr.As(err); ok {
			metrics.RecordUploadRows(0, len(e.Details))
		}
		return nil, err
	}

	refs := make([]productRef, len(rows))
	for i, r := range rows {
		refs[i] = productRef{Label: "Row " + strconv.Itoa(r.Number), Code: r.ProductCode}
	}
	if err := validateProducts(ctx, s.products, refs); err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, req.Month, req.Channel)
	if err != nil {
		return nil, err
	}
	defer release()

	stamp, err := s.stamp(ctx, req.Month, req.Channel)
	if err != nil {
		return nil, err
	}
	lines := make([]*model.ForecastLine, len(rows))
	for i, r := range rows {
		lines[i] = &model.ForecastLine{
			Month:             req.Month,
			Channel:           req.Channel,
			Category:          r.Category,
			Spec:              r.Spec,
			ProductCode:       r.ProductCode,
			ProductName:       r.ProductName,
			WarehouseLocation: r.WarehouseLocation,
			Quantity:          r.Quantity,
			Version:           stamp.Label,
			VersionID:         stamp.ID,
		}
	}
	if err := s.forecasts.ReplaceChannel(ctx, req.Month, req.Channel, lines); err != nil {
		return nil, err
	}
	metrics.RecordUploadRows(len(lines), 0)

	logger.For(ctx, s.log).Info("Forecast upload stored",
		zap.String("month", req.Month),
		zap.String("channel", req.Channel),
		zap.Int("rows", len(lines)),
		zap.String("version", stamp.Label))

	return &UploadResult{
		RowCount:   len(lines),
		Version:    stamp.Label,
		UploadedAt: stamp.At,
		Month:      req.Month,
		Channel:    req.Channel,
	}, nil
}

// List returns one channel's rows for version, or for its latest version.
func (s *ForecastService) List(ctx context.Context, actor access.Actor, month, ch, ver string) ([]model.ForecastLine, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	ch, err := canonicalChannel(ch)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanRead(ctx, actor, ch); err != nil {
		return nil, err
	}

	if ver == "" {
		latest, ok, err := s.forecasts.LatestChannelVersion(ctx, nil, month, ch)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []model.ForecastLine{}, nil
		}
		ver = latest
	}
	return s.forecasts.FindChannelVersion(ctx, nil, month, ch, ver)
}

// Versions lists one channel's versions, most recent first.
func (s *ForecastService) Versions(ctx context.Context, actor access.Actor, month, ch string) ([]model.VersionInfo, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	ch, err := canonicalChannel(ch)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanRead(ctx, actor, ch); err != nil {
		return nil, err
	}
	return s.forecasts.ChannelVersions(ctx, nil, month, ch)
}

// Template returns the upload workbook template.
func (s *ForecastService) Template() ([]byte, error) {
	data, err := excel.Template()
	if err != nil {
		return nil, apperr.Internal(err, "build upload template")
	}
	return data, nil
}
