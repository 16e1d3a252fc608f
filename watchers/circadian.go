package watchers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sayraos/sayra/automation/desktop"
	"github.com/sayraos/sayra/core/bus"
)

// CircadianEnforcer watches the wall clock for the bedtime warning and the
// bedtime itself. Matching is minute-resolution string comparison; if the
// poll loop lags past a matching minute the fire is missed, and if two
// polls land inside it the event fires twice. Known gap, left as is.
type CircadianEnforcer struct {
	bus      *bus.EventBus
	auto     desktop.Automator
	warning  string // "HH:MM"
	bedtime  string // "HH:MM"
	forced   bool
	grace    time.Duration
	interval time.Duration

	now func() time.Time
}

func NewCircadianEnforcer(b *bus.EventBus, auto desktop.Automator, warning, bedtime string, forcedLock bool, grace time.Duration) *CircadianEnforcer {
	return &CircadianEnforcer{
		bus:      b,
		auto:     auto,
		warning:  warning,
		bedtime:  bedtime,
		forced:   forcedLock,
		grace:    grace,
		interval: 30 * time.Second,
		now:      time.Now,
	}
}

// Run polls the clock until ctx is cancelled.
func (c *CircadianEnforcer) Run(ctx context.Context) {
	logrus.Infof("[CIRCADIAN] Enforcer started (warning %s, bedtime %s, forced lock %v)", c.warning, c.bedtime, c.forced)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("[CIRCADIAN] Enforcer stopped")
			return
		case <-ticker.C:
			c.checkMinute(ctx)
		}
	}
}

// checkMinute compares the current HH:MM against the configured marks.
func (c *CircadianEnforcer) checkMinute(ctx context.Context) {
	minute := c.now().Format("15:04")

	if minute == c.warning {
		c.bus.Publish(bus.EventSystemAlert, "Bedtime in 15 minutes, Boss. Start wrapping up.")
		return
	}

	if minute == c.bedtime && c.forced {
		logrus.Warn("[CIRCADIAN] Bedtime reached, forced lock engaged")
		c.bus.Publish(bus.EventLockdownWarning, "Bedtime. Locking the machine now. Good night.")

		select {
		case <-time.After(c.grace):
		case <-ctx.Done():
			return
		}
		if err := c.auto.Lock(ctx); err != nil {
			logrus.WithError(err).Error("[CIRCADIAN] Lock failed")
		}
	}
}
