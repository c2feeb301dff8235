package store

import (
	"context"
	"errors"
	"sort"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/model"
	"gorm.io/gorm"
)

// ForecastStore persists ForecastLine rows.
type ForecastStore struct {
	db *gorm.DB
}

// NewForecastStore creates a forecast store.
func NewForecastStore(db *gorm.DB) *ForecastStore {
	return &ForecastStore{db: db}
}

// DB exposes the connection for callers that open their own transaction.
func (s *ForecastStore) DB() *gorm.DB {
	return s.db
}

// ReplaceChannel deletes every row of (month, channel) and inserts lines in
// one transaction, so readers see either the old or the new batch.
func (s *ForecastStore) ReplaceChannel(ctx context.Context, month, channel string, lines []*model.ForecastLine) error {
	defer track("forecast_replace_channel")()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("month = ? AND channel = ?", month, channel).
			Delete(&model.ForecastLine{}).Error; err != nil {
			return translate(err, "delete forecasts for %s/%s", month, channel)
		}
		if len(lines) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(lines, 200).Error; err != nil {
			return translate(err, "insert forecasts for %s/%s", month, channel)
		}
		return nil
	})
}

// Create appends one row.
func (s *ForecastStore) Create(ctx context.Context, tx *gorm.DB, line *model.ForecastLine) error {
	defer track("forecast_create")()

	if err := pick(s.db, tx).WithContext(ctx).Create(line).Error; err != nil {
		return translate(err, "forecast for %s/%s/%s already exists", line.Month, line.Channel, line.ProductCode)
	}
	return nil
}

// Save writes every column of an existing row.
func (s *ForecastStore) Save(ctx context.Context, tx *gorm.DB, line *model.ForecastLine) error {
	defer track("forecast_save")()

	if err := pick(s.db, tx).WithContext(ctx).Save(line).Error; err != nil {
		return translate(err, "save forecast %d", line.ID)
	}
	return nil
}

// Delete removes one row permanently.
func (s *ForecastStore) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	defer track("forecast_delete")()

	if err := pick(s.db, tx).WithContext(ctx).Delete(&model.ForecastLine{}, id).Error; err != nil {
		return translate(err, "delete forecast %d", id)
	}
	return nil
}

// FindByID returns nil when the row does not exist.
func (s *ForecastStore) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.ForecastLine, error) {
	defer track("forecast_find_by_id")()

	var line model.ForecastLine
	err := pick(s.db, tx).WithContext(ctx).First(&line, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "load forecast %d", id)
	}
	return &line, nil
}

// FindByMonthAndVersion returns every row of month stamped with version, in
// insertion order.
func (s *ForecastStore) FindByMonthAndVersion(ctx context.Context, tx *gorm.DB, month, version string) ([]model.ForecastLine, error) {
	defer track("forecast_find_by_version")()

	var lines []model.ForecastLine
	if err := pick(s.db, tx).WithContext(ctx).
		Where("month = ? AND version = ?", month, version).
		Order("id ASC").
		Find(&lines).Error; err != nil {
		return nil, translate(err, "load forecasts for %s@%s", month, version)
	}
	return lines, nil
}

// FindByMonth returns every row of month, in insertion order.
func (s *ForecastStore) FindByMonth(ctx context.Context, tx *gorm.DB, month string) ([]model.ForecastLine, error) {
	defer track("forecast_find_by_month")()

	var lines []model.ForecastLine
	if err := pick(s.db, tx).WithContext(ctx).
		Where("month = ?", month).
		Order("id ASC").
		Find(&lines).Error; err != nil {
		return nil, translate(err, "load forecasts for %s", month)
	}
	return lines, nil
}

type versionRow struct {
	Version      string
	MaxVersionID int64 `gorm:"column:max_version_id"`
}

// DistinctVersions lists the versions of month, most recent first.
func (s *ForecastStore) DistinctVersions(ctx context.Context, tx *gorm.DB, month string) ([]string, error) {
	defer track("forecast_distinct_versions")()

	var rows []versionRow
	if err := pick(s.db, tx).WithContext(ctx).
		Model(&model.ForecastLine{}).
		Select("version, MAX(version_id) AS max_version_id").
		Where("month = ?", month).
		Group("version").
		Order("max_version_id DESC, version DESC").
		Scan(&rows).Error; err != nil {
		return nil, translate(err, "list versions for %s", month)
	}

	versions := make([]string, len(rows))
	for i, r := range rows {
		versions[i] = r.Version
	}
	return versions, nil
}

// FindOne returns the most recent row for (month, channel, productCode), or nil.
func (s *ForecastStore) FindOne(ctx context.Context, tx *gorm.DB, month, channel, productCode string) (*model.ForecastLine, error) {
	defer track("forecast_find_one")()

	var line model.ForecastLine
	err := pick(s.db, tx).WithContext(ctx).
		Where("month = ? AND channel = ? AND product_code = ?", month, channel, productCode).
		Order("version_id DESC").
		First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "load forecast %s/%s/%s", month, channel, productCode)
	}
	return &line, nil
}

// FindChannelVersion returns the rows of one channel version ordered by
// category, spec and product code.
func (s *ForecastStore) FindChannelVersion(ctx context.Context, tx *gorm.DB, month, channel, version string) ([]model.ForecastLine, error) {
	defer track("forecast_find_channel_version")()

	var lines []model.ForecastLine
	if err := pick(s.db, tx).WithContext(ctx).
		Where("month = ? AND channel = ? AND version = ?", month, channel, version).
		Order("category ASC, spec ASC, product_code ASC").
		Find(&lines).Error; err != nil {
		return nil, translate(err, "load forecasts for %s/%s@%s", month, channel, version)
	}
	return lines, nil
}

// ChannelVersions summarises the versions of one channel, most recent first.
func (s *ForecastStore) ChannelVersions(ctx context.Context, tx *gorm.DB, month, channel string) ([]model.VersionInfo, error) {
	defer track("forecast_channel_versions")()

	var lines []model.ForecastLine
	if err := pick(s.db, tx).WithContext(ctx).
		Select("version", "version_id", "updated_at").
		Where("month = ? AND channel = ?", month, channel).
		Find(&lines).Error; err != nil {
		return nil, translate(err, "list versions for %s/%s", month, channel)
	}

	byVersion := make(map[string]*model.VersionInfo)
	for _, l := range lines {
		info, ok := byVersion[l.Version]
		if !ok {
			info = &model.VersionInfo{Version: l.Version}
			byVersion[l.Version] = info
		}
		info.RowCount++
		if l.VersionID > info.VersionID {
			info.VersionID = l.VersionID
		}
		if l.UpdatedAt.After(info.UpdatedAt) {
			info.UpdatedAt = l.UpdatedAt
		}
	}

	out := make([]model.VersionInfo, 0, len(byVersion))
	for _, info := range byVersion {
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VersionID != out[j].VersionID {
			return out[i].VersionID > out[j].VersionID
		}
		return out[i].Version > out[j].Version
	})
	return out, nil
}

// LatestChannelVersion returns the most recent version of one channel.
func (s *ForecastStore) LatestChannelVersion(ctx context.Context, tx *gorm.DB, month, channel string) (string, bool, error) {
	versions, err := s.ChannelVersions(ctx, tx, month, channel)
	if err != nil {
		return "", false, err
	}
	if len(versions) == 0 {
		return "", false, nil
	}
	return versions[0].Version, true, nil
}
