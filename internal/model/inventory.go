package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventorySnapshot is one product row of a generated production plan.
// Rows are never updated in place; a subtotal override is written as a copy
// under a new version.
type InventorySnapshot struct {
	ID                 uint                `json:"id" gorm:"primaryKey"`
	Month              string              `json:"month" gorm:"type:varchar(6);not null;index:idx_inventory_month_version,priority:1"`
	ProductCode        string              `json:"product_code" gorm:"type:varchar(50);not null"`
	ProductName        string              `json:"product_name" gorm:"type:varchar(255)"`
	Category           string              `json:"category" gorm:"type:varchar(100)"`
	Spec               string              `json:"spec" gorm:"type:varchar(255)"`
	WarehouseLocation  string              `json:"warehouse_location" gorm:"type:varchar(50)"`
	SalesQuantity      decimal.Decimal     `json:"sales_quantity" gorm:"type:decimal(12,2);not null"`
	InventoryBalance   decimal.Decimal     `json:"inventory_balance" gorm:"type:decimal(12,2);not null"`
	ForecastQuantity   decimal.Decimal     `json:"forecast_quantity" gorm:"type:decimal(12,2);not null"`
	ProductionSubtotal decimal.Decimal     `json:"production_subtotal" gorm:"type:decimal(12,2);not null"`
	ModifiedSubtotal   decimal.NullDecimal `json:"modified_subtotal" gorm:"type:decimal(12,2)"`
	Version            string              `json:"version" gorm:"type:varchar(100);not null;index:idx_inventory_month_version,priority:2"`
	VersionID          int64               `json:"-" gorm:"not null;index"`
	SourceVersion      string              `json:"source_version" gorm:"type:varchar(100)"`
	QueryStartDate     string              `json:"query_start_date" gorm:"type:varchar(10)"`
	QueryEndDate       string              `json:"query_end_date" gorm:"type:varchar(10)"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// TableName keeps the table name used by the planning database
func (InventorySnapshot) TableName() string {
	return "inventory_sales_forecast"
}

// EffectiveSubtotal is the override when present, the computed subtotal otherwise.
func (s *InventorySnapshot) EffectiveSubtotal() decimal.Decimal {
	if s.ModifiedSubtotal.Valid {
		return s.ModifiedSubtotal.Decimal
	}
	return s.ProductionSubtotal
}
