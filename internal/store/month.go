package store

import (
	"context"
	"errors"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/model"
	"gorm.io/gorm"
)

// MonthStore persists month gates.
type MonthStore struct {
	db *gorm.DB
}

// NewMonthStore creates a month configuration store.
func NewMonthStore(db *gorm.DB) *MonthStore {
	return &MonthStore{db: db}
}

// DB exposes the connection for callers that open their own transaction.
func (s *MonthStore) DB() *gorm.DB {
	return s.db
}

// FindByMonth returns nil when month has no configuration.
func (s *MonthStore) FindByMonth(ctx context.Context, tx *gorm.DB, month string) (*model.MonthConfig, error) {
	defer track("month_find")()

	var cfg model.MonthConfig
	err := pick(s.db, tx).WithContext(ctx).Where("month = ?", month).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "load month %s", month)
	}
	return &cfg, nil
}

// FindByID returns nil when the configuration does not exist.
func (s *MonthStore) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.MonthConfig, error) {
	defer track("month_find_by_id")()

	var cfg model.MonthConfig
	err := pick(s.db, tx).WithContext(ctx).First(&cfg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "load month config %d", id)
	}
	return &cfg, nil
}

// List returns every month, most recent first.
func (s *MonthStore) List(ctx context.Context, tx *gorm.DB) ([]model.MonthConfig, error) {
	defer track("month_list")()

	var cfgs []model.MonthConfig
	if err := pick(s.db, tx).WithContext(ctx).Order("month DESC").Find(&cfgs).Error; err != nil {
		return nil, translate(err, "list months")
	}
	return cfgs, nil
}

// Existing returns the subset of months that already have a configuration.
func (s *MonthStore) Existing(ctx context.Context, tx *gorm.DB, months []string) (map[string]bool, error) {
	defer track("month_existing")()

	var found []string
	if err := pick(s.db, tx).WithContext(ctx).
		Model(&model.MonthConfig{}).
		Where("month IN ?", months).
		Pluck("month", &found).Error; err != nil {
		return nil, translate(err, "check existing months")
	}

	out := make(map[string]bool, len(found))
	for _, m := range found {
		out[m] = true
	}
	return out, nil
}

// CreateBatch inserts new month configurations.
func (s *MonthStore) CreateBatch(ctx context.Context, tx *gorm.DB, cfgs []*model.MonthConfig) error {
	defer track("month_create_batch")()

	if len(cfgs) == 0 {
		return nil
	}
	if err := pick(s.db, tx).WithContext(ctx).Create(cfgs).Error; err != nil {
		return translate(err, "create months")
	}
	return nil
}

// Save writes every column of an existing configuration.
func (s *MonthStore) Save(ctx context.Context, tx *gorm.DB, cfg *model.MonthConfig) error {
	defer track("month_save")()

	if err := pick(s.db, tx).WithContext(ctx).Save(cfg).Error; err != nil {
		return translate(err, "save month %s", cfg.Month)
	}
	return nil
}

// FindOpenByAutoCloseDay returns open months whose auto-close day is day.
func (s *MonthStore) FindOpenByAutoCloseDay(ctx context.Context, tx *gorm.DB, day int) ([]model.MonthConfig, error) {
	defer track("month_find_auto_close")()

	var cfgs []model.MonthConfig
	if err := pick(s.db, tx).WithContext(ctx).
		Where("is_closed = ? AND auto_close_day = ?", false, day).
		Order("month ASC").
		Find(&cfgs).Error; err != nil {
		return nil, translate(err, "find months closing on day %d", day)
	}
	return cfgs, nil
}
