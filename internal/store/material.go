package store

import (
	"context"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/model"
	"gorm.io/gorm"
)

// MaterialDemandStore persists material requirements returned by PDCA.
type MaterialDemandStore struct {
	db *gorm.DB
}

// NewMaterialDemandStore creates a material demand store.
func NewMaterialDemandStore(db *gorm.DB) *MaterialDemandStore {
	return &MaterialDemandStore{db: db}
}

// ReplaceMonth swaps every material row of month for rows.
func (s *MaterialDemandStore) ReplaceMonth(ctx context.Context, month string, rows []*model.MaterialDemand) error {
	defer track("material_replace_month")()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("month = ?", month).Delete(&model.MaterialDemand{}).Error; err != nil {
			return translate(err, "clear material demand for %s", month)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 200).Error; err != nil {
			return translate(err, "insert material demand for %s", month)
		}
		return nil
	})
}

// FindByMonth returns the material rows of month.
func (s *MaterialDemandStore) FindByMonth(ctx context.Context, tx *gorm.DB, month string) ([]model.MaterialDemand, error) {
	defer track("material_find_by_month")()

	var rows []model.MaterialDemand
	if err := pick(s.db, tx).WithContext(ctx).
		Where("month = ?", month).
		Order("product_code ASC, material_code ASC").
		Find(&rows).Error; err != nil {
		return nil, translate(err, "load material demand for %s", month)
	}
	return rows, nil
}
