package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialDemand is one material requirement returned by the PDCA system
// for a generated production plan.
type MaterialDemand struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	Month              string          `json:"month" gorm:"type:varchar(6);not null;index"`
	SourceVersion      string          `json:"source_version" gorm:"type:varchar(100)"`
	ProductCode        string          `json:"product_code" gorm:"type:varchar(50);not null"`
	MaterialCode       string          `json:"material_code" gorm:"type:varchar(50);not null"`
	MaterialName       string          `json:"material_name" gorm:"type:varchar(255)"`
	Unit               string          `json:"unit" gorm:"type:varchar(20)"`
	DemandDate         string          `json:"demand_date" gorm:"type:varchar(10)"`
	DemandQuantity     decimal.Decimal `json:"demand_quantity" gorm:"type:decimal(12,2);not null"`
	ExpectedDelivery   decimal.Decimal `json:"expected_delivery" gorm:"type:decimal(12,2);not null"`
	EstimatedInventory decimal.Decimal `json:"estimated_inventory" gorm:"type:decimal(12,2);not null"`
	CreatedAt          time.Time       `json:"created_at"`
}

// TableName keeps the table name used by the planning database
func (MaterialDemand) TableName() string {
	return "material_demand"
}
