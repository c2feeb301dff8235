// Package version stamps forecast batches and inventory snapshots with
// strictly increasing version labels.
package version

import (
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	channelLayout  = "2006/01/02 15:04:05"
	snapshotLayout = "20060102150405"
)

// Stamp is one issued version. ID orders stamps; Label is the display and
// wire string.
type Stamp struct {
	ID    int64
	Label string
	At    time.Time
}

// Clock issues stamps. Labels have second resolution, so when the current
// second has already been used the clock moves to the next unused second.
type Clock struct {
	mu   sync.Mutex
	node *snowflake.Node
	now  func() time.Time
	loc  *time.Location
	last time.Time
}

// Option configures a Clock.
type Option func(*Clock)

// WithNow overrides the wall clock.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) { c.now = now }
}

// WithLocation sets the zone labels are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(c *Clock) { c.loc = loc }
}

// NewClock creates a clock for the given snowflake node (0..1023).
func NewClock(nodeID int64, opts ...Option) (*Clock, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("create version node %d: %w", nodeID, err)
	}
	c := &Clock{node: node, now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Clock) next() (time.Time, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().In(c.loc).Truncate(time.Second)
	if !t.After(c.last) {
		t = c.last.Add(time.Second)
	}
	c.last = t
	return t, c.node.Generate().Int64()
}

// Observe moves the clock past the time encoded in each label, so the next
// stamp sorts after labels issued by other nodes. Unparseable labels are
// ignored.
func (c *Clock) Observe(labels ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, label := range labels {
		t, ok := parseLabel(label, c.loc)
		if ok && t.After(c.last) {
			c.last = t
		}
	}
}

func parseLabel(label string, loc *time.Location) (time.Time, bool) {
	if len(label) == 1+len(snapshotLayout) && label[0] == 'v' {
		t, err := time.ParseInLocation(snapshotLayout, label[1:], loc)
		return t, err == nil
	}
	if len(label) > len(channelLayout) && label[len(channelLayout)] == '(' {
		t, err := time.ParseInLocation(channelLayout, label[:len(channelLayout)], loc)
		return t, err == nil
	}
	return time.Time{}, false
}

// Channel stamps a manual edit or channel upload: "yyyy/MM/dd HH:mm:ss(channel)".
func (c *Clock) Channel(channel string) Stamp {
	t, id := c.next()
	return Stamp{ID: id, Label: ChannelLabel(t, channel), At: t}
}

// Snapshot stamps a generated inventory snapshot: "vyyyyMMddHHmmss".
func (c *Clock) Snapshot() Stamp {
	t, id := c.next()
	return Stamp{ID: id, Label: SnapshotLabel(t), At: t}
}

// ChannelLabel renders a channel-stamped version label.
func ChannelLabel(t time.Time, channel string) string {
	return t.Format(channelLayout) + "(" + channel + ")"
}

// SnapshotLabel renders a generated snapshot version label.
func SnapshotLabel(t time.Time) string {
	return "v" + t.Format(snapshotLayout)
}
