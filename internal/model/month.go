package model

import (
	"fmt"
	"regexp"
	"time"
)

// MonthLayout is the YYYYMM encoding used for every month key.
const MonthLayout = "200601"

var monthPattern = regexp.MustCompile(`^\d{6}$`)

// MonthConfig gates forecast mutations for one month.
type MonthConfig struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Month        string     `json:"month" gorm:"type:varchar(6);not null;uniqueIndex"`
	AutoCloseDay int        `json:"auto_close_day" gorm:"not null;default:10"`
	IsClosed     bool       `json:"is_closed" gorm:"not null;default:false"`
	ClosedAt     *time.Time `json:"closed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName keeps the table name used by the planning database
func (MonthConfig) TableName() string {
	return "sales_forecast_config"
}

// Close moves the month to CLOSED. Closing a closed month is a no-op.
func (m *MonthConfig) Close(now time.Time) bool {
	if m.IsClosed {
		return false
	}
	m.IsClosed = true
	m.ClosedAt = &now
	return true
}

// Reopen moves the month to OPEN and clears ClosedAt.
func (m *MonthConfig) Reopen() bool {
	if !m.IsClosed {
		return false
	}
	m.IsClosed = false
	m.ClosedAt = nil
	return true
}

// ParseMonth validates a YYYYMM string and returns the first instant of the month.
func ParseMonth(month string) (time.Time, error) {
	if !monthPattern.MatchString(month) {
		return time.Time{}, fmt.Errorf("month %q must use the YYYYMM format", month)
	}
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return time.Time{}, fmt.Errorf("month %q must use the YYYYMM format", month)
	}
	return t, nil
}

// MonthRange lists every month from start to end inclusive.
func MonthRange(start, end string) ([]string, error) {
	from, err := ParseMonth(start)
	if err != nil {
		return nil, err
	}
	to, err := ParseMonth(end)
	if err != nil {
		return nil, err
	}
	if from.After(to) {
		return nil, fmt.Errorf("start month %s is after end month %s", start, end)
	}

	var months []string
	for m := from; !m.After(to); m = m.AddDate(0, 1, 0) {
		months = append(months, m.Format(MonthLayout))
	}
	return months, nil
}
