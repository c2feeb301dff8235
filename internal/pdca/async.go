package pdca

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ServtechRD/SinkerProject26-sub000/pkg/metrics"
	"go.uber.org/zap"
)

// AsyncDispatcher queues requests for a single background worker that calls
// the PDCA client and stores the returned materials. A full queue drops the
// request.
type AsyncDispatcher struct {
	client  Client
	sink    DemandSink
	queue   chan Request
	timeout time.Duration
	log     *zap.Logger

	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewAsyncDispatcher starts the worker. Call Close to drain the queue.
func NewAsyncDispatcher(client Client, sink DemandSink, queueSize int, timeout time.Duration, log *zap.Logger) *AsyncDispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	d := &AsyncDispatcher{
		client:  client,
		sink:    sink,
		queue:   make(chan Request, queueSize),
		timeout: timeout,
		log:     log,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *AsyncDispatcher) Dispatch(req Request) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn("PDCA dispatcher closed, dropping request", zap.String("month", req.Month))
		metrics.RecordPDCADispatch("dropped")
		return
	}

	select {
	case d.queue <- req:
		metrics.RecordPDCADispatch("queued")
	default:
		d.log.Warn("PDCA queue full, dropping request",
			zap.String("month", req.Month),
			zap.String("source_version", req.SourceVersion))
		metrics.RecordPDCADispatch("dropped")
	}
}

// Close stops accepting requests and waits for queued ones to finish.
func (d *AsyncDispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})
	d.wg.Wait()
}

func (d *AsyncDispatcher) run() {
	defer d.wg.Done()
	for req := range d.queue {
		if err := d.process(req); err != nil {
			d.log.Error("PDCA integration failed",
				zap.String("month", req.Month),
				zap.String("source_version", req.SourceVersion),
				zap.Error(err))
			metrics.RecordPDCADispatch("failed")
			continue
		}
		metrics.RecordPDCADispatch("succeeded")
	}
}

func (d *AsyncDispatcher) process(req Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	resp, err := d.client.CalculateMaterialRequirements(ctx, req)
	if err != nil {
		return fmt.Errorf("calculate material requirements: %w", err)
	}

	rows := ToDemands(req, resp)
	if err := d.sink.ReplaceMonth(ctx, req.Month, rows); err != nil {
		return fmt.Errorf("store material demand: %w", err)
	}

	d.log.Info("PDCA integration completed",
		zap.String("month", req.Month),
		zap.String("source_version", req.SourceVersion),
		zap.Int("materials", len(rows)))
	return nil
}
