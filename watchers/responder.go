package watchers

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sayraos/sayra/automation/desktop"
	"github.com/sayraos/sayra/core/bus"
)

// LockResponder turns presence transitions into screen security: away
// schedules a delayed lock, return cancels it and wakes the display. The
// delay absorbs quick trips to the kitchen.
type LockResponder struct {
	auto  desktop.Automator
	delay time.Duration

	mu      sync.Mutex
	pending *time.Timer
}

func NewLockResponder(auto desktop.Automator, delay time.Duration) *LockResponder {
	return &LockResponder{auto: auto, delay: delay}
}

// Bind subscribes the responder to presence events on the bus.
func (r *LockResponder) Bind(b *bus.EventBus) {
	b.Subscribe(bus.EventUserAway, func(bus.Event) { r.onAway() })
	b.Subscribe(bus.EventUserReturned, func(bus.Event) { r.onReturned() })
}

func (r *LockResponder) onAway() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending != nil {
		return
	}
	logrus.Infof("[RESPONDER] User away, locking in %s", r.delay)
	r.pending = time.AfterFunc(r.delay, func() {
		r.mu.Lock()
		r.pending = nil
		r.mu.Unlock()

		logrus.Info("[RESPONDER] Locking workstation")
		if err := r.auto.Lock(context.Background()); err != nil {
			logrus.WithError(err).Error("[RESPONDER] Lock failed")
		}
	})
}

// onReturned cancels a pending lock (safe when none is pending) and wakes
// the display.
func (r *LockResponder) onReturned() {
	r.mu.Lock()
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
		logrus.Info("[RESPONDER] User back, lock cancelled")
	}
	r.mu.Unlock()

	if err := r.auto.Wake(context.Background()); err != nil {
		logrus.WithError(err).Debug("[RESPONDER] Wake failed")
	}
}
