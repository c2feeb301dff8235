package pdca

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var mockMaterials = [][3]string{
	{"AA08C", "關華豆膠(LF20)/25kg/包", "KG"},
	{"BA12D", "玉米澱粉/20kg/包", "KG"},
	{"CC05A", "乳化劑E471/10kg/箱", "KG"},
	{"DD15B", "葡萄糖漿/25kg/桶", "KG"},
	{"EE08C", "食用色素黃5號/1kg/瓶", "KG"},
}

const materialsPerItem = 3

// StubClient returns three mock materials per scheduled product, needed one
// week before the product's demand date.
type StubClient struct {
	log *zap.Logger
}

// NewStubClient creates the built-in PDCA stub.
func NewStubClient(log *zap.Logger) *StubClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &StubClient{log: log}
}

func (s *StubClient) CalculateMaterialRequirements(_ context.Context, req Request) (*Response, error) {
	var (
		share     = decimal.RequireFromString("0.15")
		step      = decimal.RequireFromString("0.2")
		delivery  = decimal.RequireFromString("0.4")
		inventory = decimal.RequireFromString("0.2")
	)

	resp := &Response{}
	for _, item := range req.Schedule {
		demandDate, err := time.Parse("2006-01-02", item.DemandDate)
		if err != nil {
			return nil, fmt.Errorf("schedule item %s: invalid demand date %q", item.ProductCode, item.DemandDate)
		}
		materialDate := demandDate.AddDate(0, 0, -7).Format("2006-01-02")
		base := item.Quantity.Mul(share)

		for i := 0; i < materialsPerItem; i++ {
			m := mockMaterials[i%len(mockMaterials)]
			qty := base.Mul(decimal.NewFromInt(1).Add(step.Mul(decimal.NewFromInt(int64(i)))))
			resp.Materials = append(resp.Materials, Material{
				ProductCode:        item.ProductCode,
				MaterialCode:       m[0],
				MaterialName:       m[1],
				Unit:               m[2],
				DemandDate:         materialDate,
				ExpectedDelivery:   qty.Mul(delivery).Round(2),
				DemandQuantity:     qty.Round(2),
				EstimatedInventory: qty.Mul(inventory).Round(2),
			})
		}
	}

	s.log.Info("PDCA stub calculated material requirements",
		zap.String("month", req.Month),
		zap.Int("schedule_items", len(req.Schedule)),
		zap.Int("materials", len(resp.Materials)))
	return resp, nil
}
