package metrics

import (
	"time"

	"github.com/driftbase/driftbase/ring"
)

// Collector periodically samples cluster-wide gauges that aren't
// naturally updated at the point of the event, such as ring membership
// size.
type Collector struct {
	members ring.Membership
	stopCh  chan struct{}
}

// NewCollector creates a metrics collector over a membership oracle.
func NewCollector(members ring.Membership) *Collector {
	return &Collector{
		members: members,
		stopCh:  make(chan struct{}),
	}
}

// Start begins periodic collection in a background goroutine.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	RingMembersTotal.Set(float64(len(c.members.Nodes())))
}
