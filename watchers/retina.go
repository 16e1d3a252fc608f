package watchers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sayraos/sayra/core/bus"
)

// RetinaGuard reminds the user to rest their eyes on a fixed interval. It
// has no state at all; the interval ticker is the whole protocol.
type RetinaGuard struct {
	bus      *bus.EventBus
	interval time.Duration
}

func NewRetinaGuard(b *bus.EventBus, interval time.Duration) *RetinaGuard {
	return &RetinaGuard{bus: b, interval: interval}
}

// Run emits VISION_BREAK every interval until ctx is cancelled.
func (r *RetinaGuard) Run(ctx context.Context) {
	logrus.Infof("[RETINA] Guard started (every %s)", r.interval)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("[RETINA] Guard stopped")
			return
		case <-ticker.C:
			r.bus.Publish(bus.EventVisionBreak,
				"Boss, look away from the screen for 20 seconds. Your eyes earn it.")
		}
	}
}
