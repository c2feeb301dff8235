package erp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// HTTPClient calls an ERP gateway over JSON.
type HTTPClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type quantityResponse struct {
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
}

type validationResponse struct {
	ProductCode string `json:"product_code"`
	Valid       bool   `json:"valid"`
}

// ErrorResponse is the error body returned by the gateway
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewHTTPClient creates a new ERP gateway client
func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
	}
}

func (c *HTTPClient) InventoryBalance(ctx context.Context, productCode, month string) (decimal.Decimal, error) {
	if strings.TrimSpace(productCode) == "" {
		return decimal.Zero, nil
	}
	q := url.Values{}
	q.Set("product_code", productCode)
	q.Set("month", month)

	var resp quantityResponse
	if err := c.get(ctx, "/inventory/balance", q, &resp); err != nil {
		return decimal.Zero, err
	}
	return resp.Quantity, nil
}

func (c *HTTPClient) SalesQuantity(ctx context.Context, productCode, startDate, endDate string) (decimal.Decimal, error) {
	if strings.TrimSpace(productCode) == "" {
		return decimal.Zero, nil
	}
	q := url.Values{}
	q.Set("product_code", productCode)
	q.Set("start_date", startDate)
	q.Set("end_date", endDate)

	var resp quantityResponse
	if err := c.get(ctx, "/sales/quantity", q, &resp); err != nil {
		return decimal.Zero, err
	}
	return resp.Quantity, nil
}

func (c *HTTPClient) ValidateProduct(ctx context.Context, productCode string) (bool, error) {
	if strings.TrimSpace(productCode) == "" {
		return false, nil
	}
	q := url.Values{}
	q.Set("product_code", productCode)

	var resp validationResponse
	if err := c.get(ctx, "/products/validate", q, &resp); err != nil {
		return false, err
	}
	return resp.Valid, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Error("ERP request failed", zap.String("path", path), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.Logger.Error("Failed to read ERP response", zap.String("path", path), zap.Error(err))
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("erp %s: status %d: %s", path, resp.StatusCode, string(body))
		}
		return fmt.Errorf("erp %s: %s - %s", path, errorResp.Error, errorResp.Message)
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.Logger.Error("Failed to parse ERP response", zap.String("path", path), zap.Error(err))
		return err
	}
	return nil
}
