package erp

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/shopspring/decimal"
)

// StubClient returns deterministic figures for local runs and tests.
// PROD001 and PROD002 have fixed figures; other PROD codes derive theirs
// from a hash of the code; anything else is zero.
type StubClient struct{}

// NewStubClient creates the built-in ERP stub.
func NewStubClient() *StubClient {
	return &StubClient{}
}

func hashCode(code string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(code))
	return h.Sum32()
}

func (StubClient) InventoryBalance(_ context.Context, productCode, _ string) (decimal.Decimal, error) {
	code := strings.TrimSpace(productCode)
	switch {
	case code == "PROD001":
		return decimal.NewFromInt(250), nil
	case code == "PROD002":
		return decimal.NewFromInt(150), nil
	case strings.HasPrefix(code, "PROD"):
		return decimal.NewFromInt(int64(100 + hashCode(code)%200)), nil
	}
	return decimal.Zero, nil
}

func (StubClient) SalesQuantity(_ context.Context, productCode, _, _ string) (decimal.Decimal, error) {
	code := strings.TrimSpace(productCode)
	switch {
	case code == "PROD001":
		return decimal.NewFromInt(100), nil
	case code == "PROD002":
		return decimal.NewFromInt(75), nil
	case strings.HasPrefix(code, "PROD"):
		return decimal.NewFromInt(int64(50 + hashCode(code)%100)), nil
	}
	return decimal.Zero, nil
}

func (StubClient) ValidateProduct(_ context.Context, productCode string) (bool, error) {
	return strings.TrimSpace(productCode) != "", nil
}
