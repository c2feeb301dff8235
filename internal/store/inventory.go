package store

import (
	"context"
	"errors"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/model"
	"gorm.io/gorm"
)

// InventoryStore persists generated production plan rows.
type InventoryStore struct {
	db *gorm.DB
}

// NewInventoryStore creates an inventory snapshot store.
func NewInventoryStore(db *gorm.DB) *InventoryStore {
	return &InventoryStore{db: db}
}

// CreateBatch inserts every row of one generated version.
func (s *InventoryStore) CreateBatch(ctx context.Context, tx *gorm.DB, rows []*model.InventorySnapshot) error {
	defer track("inventory_create_batch")()

	if len(rows) == 0 {
		return nil
	}
	if err := pick(s.db, tx).WithContext(ctx).CreateInBatches(rows, 200).Error; err != nil {
		return translate(err, "insert inventory snapshot for %s", rows[0].Month)
	}
	return nil
}

// Create inserts one row.
func (s *InventoryStore) Create(ctx context.Context, tx *gorm.DB, row *model.InventorySnapshot) error {
	defer track("inventory_create")()

	if err := pick(s.db, tx).WithContext(ctx).Create(row).Error; err != nil {
		return translate(err, "insert inventory row %s/%s", row.Month, row.ProductCode)
	}
	return nil
}

// FindByID returns nil when the row does not exist.
func (s *InventoryStore) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.InventorySnapshot, error) {
	defer track("inventory_find_by_id")()

	var row model.InventorySnapshot
	err := pick(s.db, tx).WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "load inventory row %d", id)
	}
	return &row, nil
}

// FindByMonthAndVersion returns the rows of one version by product code.
func (s *InventoryStore) FindByMonthAndVersion(ctx context.Context, tx *gorm.DB, month, version string) ([]model.InventorySnapshot, error) {
	defer track("inventory_find_by_version")()

	var rows []model.InventorySnapshot
	if err := pick(s.db, tx).WithContext(ctx).
		Where("month = ? AND version = ?", month, version).
		Order("product_code ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, translate(err, "load inventory snapshot %s@%s", month, version)
	}
	return rows, nil
}

// DistinctVersions lists the snapshot versions of month, most recent first.
func (s *InventoryStore) DistinctVersions(ctx context.Context, tx *gorm.DB, month string) ([]string, error) {
	defer track("inventory_distinct_versions")()

	var rows []versionRow
	if err := pick(s.db, tx).WithContext(ctx).
		Model(&model.InventorySnapshot{}).
		Select("version, MAX(version_id) AS max_version_id").
		Where("month = ?", month).
		Group("version").
		Order("max_version_id DESC, version DESC").
		Scan(&rows).Error; err != nil {
		return nil, translate(err, "list inventory versions for %s", month)
	}

	versions := make([]string, len(rows))
	for i, r := range rows {
		versions[i] = r.Version
	}
	return versions, nil
}
