package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ForecastLine is one (month, channel, product) quantity observation.
// Every batch write carries a shared Version label and VersionID.
type ForecastLine struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	Month             string          `json:"month" gorm:"type:varchar(6);not null;uniqueIndex:ux_forecast_line_key,priority:1;index:idx_forecast_month_version,priority:1"`
	Channel           string          `json:"channel" gorm:"type:varchar(50);not null;uniqueIndex:ux_forecast_line_key,priority:2"`
	Category          string          `json:"category" gorm:"type:varchar(100)"`
	Spec              string          `json:"spec" gorm:"type:varchar(255)"`
	ProductCode       string          `json:"product_code" gorm:"type:varchar(50);not null;uniqueIndex:ux_forecast_line_key,priority:3"`
	ProductName       string          `json:"product_name" gorm:"type:varchar(255)"`
	WarehouseLocation string          `json:"warehouse_location" gorm:"type:varchar(50)"`
	Quantity          decimal.Decimal `json:"quantity" gorm:"type:decimal(12,2);not null"`
	Version           string          `json:"version" gorm:"type:varchar(100);not null;uniqueIndex:ux_forecast_line_key,priority:4;index:idx_forecast_month_version,priority:2"`
	VersionID         int64           `json:"-" gorm:"not null;index"`
	IsModified        bool            `json:"is_modified" gorm:"not null;default:false"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TableName keeps the table name used by the planning database
func (ForecastLine) TableName() string {
	return "sales_forecast"
}

// VersionInfo summarises one distinct version of a channel or month.
type VersionInfo struct {
	Version   string    `json:"version"`
	VersionID int64     `json:"-"`
	RowCount  int64     `json:"row_count"`
	UpdatedAt time.Time `json:"updated_at"`
}
