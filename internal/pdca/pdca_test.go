package pdca

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func sampleRequest() Request {
	return Request{
		Month:         "202501",
		SourceVersion: "v20250101000000",
		Schedule: []ScheduleItem{
			{ProductCode: "P1", Quantity: decimal.NewFromInt(1000), DemandDate: "2025-01-01"},
			{ProductCode: "P2", Quantity: decimal.NewFromInt(200), DemandDate: "2025-01-01"},
		},
	}
}

func TestStubClient(t *testing.T) {
	resp, err := NewStubClient(nil).CalculateMaterialRequirements(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("CalculateMaterialRequirements: %v", err)
	}
	if len(resp.Materials) != 6 {
		t.Fatalf("expected 3 materials per item, got %d", len(resp.Materials))
	}

	first := resp.Materials[0]
	if first.DemandDate != "2024-12-25" {
		t.Errorf("expected materials one week early, got %s", first.DemandDate)
	}
	if first.DemandQuantity.StringFixed(2) != "150.00" || first.ExpectedDelivery.StringFixed(2) != "60.00" {
		t.Errorf("unexpected quantities %+v", first)
	}
	if resp.Materials[2].DemandQuantity.StringFixed(2) != "210.00" {
		t.Errorf("expected third material 150*1.4, got %s", resp.Materials[2].DemandQuantity)
	}
}

func TestStubClientRejectsBadDate(t *testing.T) {
	req := sampleRequest()
	req.Schedule[0].DemandDate = "01/01/2025"
	if _, err := NewStubClient(nil).CalculateMaterialRequirements(context.Background(), req); err == nil {
		t.Error("expected error for malformed demand date")
	}
}

type recordingSink struct {
	mu   sync.Mutex
	rows map[string][]*model.MaterialDemand
	done chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{rows: make(map[string][]*model.MaterialDemand), done: make(chan struct{}, 10)}
}

func (s *recordingSink) ReplaceMonth(_ context.Context, month string, rows []*model.MaterialDemand) error {
	s.mu.Lock()
	s.rows[month] = rows
	s.mu.Unlock()
	s.done <- struct{}{}
	return nil
}

type failingClient struct{ calls chan struct{} }

func (f failingClient) CalculateMaterialRequirements(context.Context, Request) (*Response, error) {
	f.calls <- struct{}{}
	return nil, errors.New("pdca unavailable")
}

type blockingClient struct{ release chan struct{} }

func (b blockingClient) CalculateMaterialRequirements(ctx context.Context, req Request) (*Response, error) {
	<-b.release
	return &Response{}, nil
}

func TestAsyncDispatcherStoresMaterials(t *testing.T) {
	sink := newRecordingSink()
	d := NewAsyncDispatcher(NewStubClient(nil), sink, 4, time.Second, zap.NewNop())
	defer d.Close()

	d.Dispatch(sampleRequest())

	select {
	case <-sink.done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch was not processed")
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	rows := sink.rows["202501"]
	if len(rows) != 6 || rows[0].SourceVersion != "v20250101000000" {
		t.Errorf("unexpected stored rows %+v", rows)
	}
}

func TestAsyncDispatcherSwallowsFailures(t *testing.T) {
	calls := make(chan struct{}, 1)
	sink := newRecordingSink()
	d := NewAsyncDispatcher(failingClient{calls: calls}, sink, 1, time.Second, zap.NewNop())

	d.Dispatch(sampleRequest())
	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("client was not called")
	}
	d.Close()

	if len(sink.rows) != 0 {
		t.Error("a failed calculation must not store anything")
	}
}

func TestAsyncDispatcherNeverBlocks(t *testing.T) {
	release := make(chan struct{})
	d := NewAsyncDispatcher(blockingClient{release: release}, newRecordingSink(), 1, time.Second, zap.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Dispatch(sampleRequest())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a full queue")
	}
	close(release)
	d.Close()
	d.Dispatch(sampleRequest())
}

func TestHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/material-requirements" {
			http.NotFound(w, r)
			return
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Month != "202501" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(Response{Materials: []Material{{ProductCode: "P1", MaterialCode: "M1", DemandQuantity: decimal.NewFromInt(3)}}})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second, zap.NewNop())
	resp, err := c.CalculateMaterialRequirements(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("CalculateMaterialRequirements: %v", err)
	}
	if len(resp.Materials) != 1 || resp.Materials[0].MaterialCode != "M1" {
		t.Errorf("unexpected response %+v", resp)
	}

	bad := sampleRequest()
	bad.Month = ""
	if _, err := c.CalculateMaterialRequirements(context.Background(), bad); err == nil {
		t.Error("expected error for non-200 response")
	}
}
