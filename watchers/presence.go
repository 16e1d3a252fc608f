// Package watchers holds the background monitors: presence, eye strain,
// bedtime, meals, and the lock-on-away responder. Each runs its own loop,
// talks only through the event bus, and observes context cancellation
// within one poll interval.
package watchers

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sayraos/sayra/core/bus"
)

// PresenceSensor answers "is the user at the desk right now". Camera,
// input-activity, or anything else behind a bool.
type PresenceSensor interface {
	Present(ctx context.Context) bool
}

// PresenceMonitor debounces sensor readings into USER_AWAY / USER_RETURNED
// transitions. A single missed reading never flips state; it takes
// missLimit consecutive misses to declare the user away.
type PresenceMonitor struct {
	sensor    PresenceSensor
	bus       *bus.EventBus
	interval  time.Duration
	missLimit int

	mu      sync.Mutex
	present bool
	misses  int
	sentry  bool
}

// NewPresenceMonitor starts in the Away state so the first positive reading
// produces a USER_RETURNED greeting rather than silence.
func NewPresenceMonitor(sensor PresenceSensor, b *bus.EventBus, interval time.Duration, missLimit int, sentryEnabled bool) *PresenceMonitor {
	if missLimit < 1 {
		missLimit = 4
	}
	return &PresenceMonitor{
		sensor:    sensor,
		bus:       b,
		interval:  interval,
		missLimit: missLimit,
		present:   false,
		sentry:    sentryEnabled,
	}
}

// Run polls the sensor until ctx is cancelled. Sentry toggles arrive over
// the bus; while disabled the sensor is not consulted at all.
func (m *PresenceMonitor) Run(ctx context.Context) {
	m.bus.Subscribe(bus.EventEnableSentry, func(bus.Event) { m.setSentry(true) })
	m.bus.Subscribe(bus.EventDisableSentry, func(bus.Event) { m.setSentry(false) })

	logrus.Infof("[PRESENCE] Monitor started (interval %s, miss limit %d)", m.interval, m.missLimit)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("[PRESENCE] Monitor stopped")
			return
		case <-ticker.C:
			if !m.sentryEnabled() {
				continue
			}
			m.tick(m.sensor.Present(ctx))
		}
	}
}

// tick applies one sensor reading to the debounce state machine.
func (m *PresenceMonitor) tick(present bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if present {
		m.misses = 0
		if !m.present {
			m.present = true
			logrus.Info("[PRESENCE] User returned")
			m.bus.Publish(bus.EventUserReturned, nil)
		}
		return
	}

	if !m.present {
		return
	}
	m.misses++
	if m.misses == m.missLimit {
		m.present = false
		logrus.Info("[PRESENCE] User away")
		m.bus.Publish(bus.EventUserAway, nil)
	}
}

func (m *PresenceMonitor) setSentry(enabled bool) {
	m.mu.Lock()
	m.sentry = enabled
	m.mu.Unlock()
	logrus.Infof("[PRESENCE] Sentry mode %v", enabled)
}

func (m *PresenceMonitor) sentryEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sentry
}

// IsPresent reports the current debounced state, for the vitals endpoint.
func (m *PresenceMonitor) IsPresent() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.present
}
