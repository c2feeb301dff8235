package pdca

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/metrics"
	"go.uber.org/zap"
)

// PubSubDispatcher publishes requests to a Pub/Sub topic consumed by the
// PDCA system. Publish results are awaited off the caller's goroutine.
type PubSubDispatcher struct {
	topic   *pubsub.Topic
	timeout time.Duration
	log     *zap.Logger
	wg      sync.WaitGroup
}

// NewPubSubDispatcher publishes to topicID through client.
func NewPubSubDispatcher(client *pubsub.Client, topicID string, timeout time.Duration, log *zap.Logger) *PubSubDispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PubSubDispatcher{topic: client.Topic(topicID), timeout: timeout, log: log}
}

func (d *PubSubDispatcher) Dispatch(req Request) {
	data, err := json.Marshal(req)
	if err != nil {
		d.log.Error("Failed to encode PDCA request", zap.String("month", req.Month), zap.Error(err))
		metrics.RecordPDCADispatch("failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	result := d.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"month":          req.Month,
			"source_version": req.SourceVersion,
		},
	})

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()
		id, err := result.Get(ctx)
		if err != nil {
			d.log.Error("Failed to publish PDCA request",
				zap.String("month", req.Month),
				zap.String("source_version", req.SourceVersion),
				zap.Error(err))
			metrics.RecordPDCADispatch("failed")
			return
		}
		d.log.Info("Published PDCA request",
			zap.String("month", req.Month),
			zap.String("message_id", id))
		metrics.RecordPDCADispatch("published")
	}()
}

// Close waits for outstanding publishes and flushes the topic.
func (d *PubSubDispatcher) Close() {
	d.wg.Wait()
	d.topic.Stop()
}
