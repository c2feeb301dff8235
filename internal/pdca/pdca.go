// Package pdca hands generated production plans to the PDCA material
// requirements system without blocking or failing the caller.
package pdca

import (
	"context"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/model"
	"github.com/shopspring/decimal"
)

// ScheduleItem is one product the plan asks to produce.
type ScheduleItem struct {
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	DemandDate  string          `json:"demand_date"`
}

// Request is a material requirements calculation for one month's plan.
type Request struct {
	Month         string         `json:"month"`
	SourceVersion string         `json:"source_version"`
	Schedule      []ScheduleItem `json:"schedule"`
}

// Material is one material requirement returned by PDCA.
type Material struct {
	ProductCode        string          `json:"product_code"`
	MaterialCode       string          `json:"material_code"`
	MaterialName       string          `json:"material_name"`
	Unit               string          `json:"unit"`
	DemandDate         string          `json:"demand_date"`
	ExpectedDelivery   decimal.Decimal `json:"expected_delivery"`
	DemandQuantity     decimal.Decimal `json:"demand_quantity"`
	EstimatedInventory decimal.Decimal `json:"estimated_inventory"`
}

// Response carries the calculated materials.
type Response struct {
	Materials []Material `json:"materials"`
}

// Client calculates material requirements.
type Client interface {
	CalculateMaterialRequirements(ctx context.Context, req Request) (*Response, error)
}

// Dispatcher accepts a request and returns immediately. Failures are logged
// and counted, never reported to the caller.
type Dispatcher interface {
	Dispatch(req Request)
}

// DemandSink stores the materials of one month.
type DemandSink interface {
	ReplaceMonth(ctx context.Context, month string, rows []*model.MaterialDemand) error
}

// ToDemands maps a response onto persisted rows.
func ToDemands(req Request, resp *Response) []*model.MaterialDemand {
	rows := make([]*model.MaterialDemand, 0, len(resp.Materials))
	for _, m := range resp.Materials {
		rows = append(rows, &model.MaterialDemand{
			Month:              req.Month,
			SourceVersion:      req.SourceVersion,
			ProductCode:        m.ProductCode,
			MaterialCode:       m.MaterialCode,
			MaterialName:       m.MaterialName,
			Unit:               m.Unit,
			DemandDate:         m.DemandDate,
			ExpectedDelivery:   m.ExpectedDelivery,
			DemandQuantity:     m.DemandQuantity,
			EstimatedInventory: m.EstimatedInventory,
		})
	}
	return rows
}
