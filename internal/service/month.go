package service

import (
	"context"
	"time"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/apperr"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/model"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/store"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/logger"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/metrics"
	"go.uber.org/zap"
)

// CreateMonthsResult lists what a range creation did.
type CreateMonthsResult struct {
	Created []*model.MonthConfig `json:"created"`
	Skipped []string             `json:"skipped"`
}

// UpdateMonthRequest changes the auto-close day, the state, or both.
type UpdateMonthRequest struct {
	AutoCloseDay *int
	IsClosed     *bool
}

// MonthService manages the per-month gates.
type MonthService struct {
	months              *store.MonthStore
	defaultAutoCloseDay int
	now                 func() time.Time
	log                 *zap.Logger
}

// NewMonthService creates the month service. now defaults to time.Now.
func NewMonthService(months *store.MonthStore, defaultAutoCloseDay int, now func() time.Time, log *zap.Logger) *MonthService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &MonthService{
		months:              months,
		defaultAutoCloseDay: defaultAutoCloseDay,
		now:                 now,
		log:                 log,
	}
}

func validDay(day int) error {
	if day < 1 || day > 31 {
		return apperr.Validation("auto close day must be between 1 and 31, got %d", day)
	}
	return nil
}

// CreateMonths creates an open configuration for every month from start to
// end. Existing months are skipped; a range that already exists entirely is
// a conflict.
func (s *MonthService) CreateMonths(ctx context.Context, start, end string) (*CreateMonthsResult, error) {
	months, err := model.MonthRange(start, end)
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	existing, err := s.months.Existing(ctx, nil, months)
	if err != nil {
		return nil, err
	}

	res := &CreateMonthsResult{Created: []*model.MonthConfig{}, Skipped: []string{}}
	for _, m := range months {
		if existing[m] {
			res.Skipped = append(res.Skipped, m)
			continue
		}
		res.Created = append(res.Created, &model.MonthConfig{
			Month:        m,
			AutoCloseDay: s.defaultAutoCloseDay,
		})
	}
	if len(res.Created) == 0 {
		return nil, apperr.Conflict("months %s to %s already exist", start, end).WithDetails(res.Skipped...)
	}

	if err := s.months.CreateBatch(ctx, nil, res.Created); err != nil {
		return nil, err
	}

	logger.For(ctx, s.log).Info("Months created",
		zap.String("start", start),
		zap.String("end", end),
		zap.Int("created", len(res.Created)),
		zap.Strings("skipped", res.Skipped))
	return res, nil
}

// ListMonths returns every configured month, most recent first.
func (s *MonthService) ListMonths(ctx context.Context) ([]model.MonthConfig, error) {
	return s.months.List(ctx, nil)
}

// UpdateMonth applies req to configuration id. Toggling to the current
// state is a no-op.
func (s *MonthService) UpdateMonth(ctx context.Context, id uint, req UpdateMonthRequest) (*model.MonthConfig, error) {
	if req.AutoCloseDay != nil {
		if err := validDay(*req.AutoCloseDay); err != nil {
			return nil, err
		}
	}

	cfg, err := s.months.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, apperr.NotFound("month config %d not found", id)
	}

	if req.AutoCloseDay != nil {
		cfg.AutoCloseDay = *req.AutoCloseDay
	}
	if req.IsClosed != nil {
		if *req.IsClosed {
			cfg.Close(s.now())
		} else {
			cfg.Reopen()
		}
	}
	if err := s.months.Save(ctx, nil, cfg); err != nil {
		return nil, err
	}

	logger.For(ctx, s.log).Info("Month updated",
		zap.String("month", cfg.Month),
		zap.Int("auto_close_day", cfg.AutoCloseDay),
		zap.Bool("is_closed", cfg.IsClosed))
	return cfg, nil
}

// AutoClose closes every open month whose auto-close day is day and
// returns how many were closed.
func (s *MonthService) AutoClose(ctx context.Context, day int) (int, error) {
	if err := validDay(day); err != nil {
		return 0, err
	}
	cfgs, err := s.months.FindOpenByAutoCloseDay(ctx, nil, day)
	if err != nil {
		return 0, err
	}

	now := s.now()
	closed := 0
	for i := range cfgs {
		cfg := &cfgs[i]
		if !cfg.Close(now) {
			continue
		}
		if err := s.months.Save(ctx, nil, cfg); err != nil {
			return closed, err
		}
		closed++
		logger.For(ctx, s.log).Info("Month auto-closed", zap.String("month", cfg.Month), zap.Int("auto_close_day", day))
	}
	metrics.MonthsAutoClosedCounter.Add(float64(closed))
	return closed, nil
}
