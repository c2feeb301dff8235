package service

import (
	"context"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/apperr"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/channel"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/reconcile"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/store"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/logger"
	"go.uber.org/zap"
)

// IntegrationResult is the consolidated view of one month's version.
type IntegrationResult struct {
	Month           string             `json:"month"`
	Version         string             `json:"version"`
	PreviousVersion string             `json:"previous_version,omitempty"`
	Channels        []string           `json:"channels"`
	Rows            []reconcile.Row    `json:"rows"`
	Dropped         int                `json:"dropped"`
	Anomalies       []channel.Mismatch `json:"anomalies,omitempty"`
}

// IntegrationService builds the per-channel consolidation of a month.
type IntegrationService struct {
	forecasts  *store.ForecastStore
	aggregator *channel.Aggregator
	log        *zap.Logger
}

// NewIntegrationService wires the integration query.
func NewIntegrationService(forecasts *store.ForecastStore, aggregator *channel.Aggregator, log *zap.Logger) *IntegrationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &IntegrationService{forecasts: forecasts, aggregator: aggregator, log: log}
}

// Query aggregates version (or the month's latest) and diffs it against the
// version immediately preceding it in the month's lineage.
func (s *IntegrationService) Query(ctx context.Context, month, ver string) (*IntegrationResult, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}

	res := &IntegrationResult{
		Month:    month,
		Channels: channel.Names(),
		Rows:     []reconcile.Row{},
	}

	versions, err := s.forecasts.DistinctVersions(ctx, nil, month)
	if err != nil {
		return nil, err
	}
	if ver == "" {
		latest, ok := reconcile.Latest(versions)
		if !ok {
			return res, nil
		}
		ver = latest
	} else if !reconcile.Contains(versions, ver) {
		return nil, apperr.NotFound("version %s not found for month %s", ver, month)
	}
	res.Version = ver

	lines, err := s.forecasts.FindByMonthAndVersion(ctx, nil, month, ver)
	if err != nil {
		return nil, err
	}
	current := s.aggregator.Aggregate(lines)
	res.Dropped = len(current.Dropped)
	res.Anomalies = current.Mismatches

	var previous map[string]*channel.Product
	if prev, ok := reconcile.Previous(versions, ver); ok {
		res.PreviousVersion = prev
		prevLines, err := s.forecasts.FindByMonthAndVersion(ctx, nil, month, prev)
		if err != nil {
			return nil, err
		}
		previous = s.aggregator.Quiet().Aggregate(prevLines).Products
	}

	res.Rows = reconcile.Diff(current.Products, previous)

	logger.For(ctx, s.log).Debug("Integration computed",
		zap.String("month", month),
		zap.String("version", ver),
		zap.String("previous_version", res.PreviousVersion),
		zap.Int("products", len(res.Rows)),
		zap.Int("dropped", res.Dropped))
	return res, nil
}
