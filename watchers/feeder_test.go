package watchers

import (
	"testing"
	"time"

	"github.com/sayraos/sayra/core/bus"
)

func TestFeederMealMinuteFires(t *testing.T) {
	b := bus.New()
	alerts := collectEvents(b, bus.EventSystemAlert)
	f := NewFeeder(b, []string{"13:30"}, time.Hour)

	base, _ := time.Parse("2006-01-02 15:04", "2026-08-31 13:30")
	f.now = func() time.Time { return base }

	f.checkMeal()
	expectEvent(t, alerts, bus.EventSystemAlert)
}

func TestFeederCooldownStopsRepeatWithinMinute(t *testing.T) {
	b := bus.New()
	alerts := collectEvents(b, bus.EventSystemAlert)
	f := NewFeeder(b, []string{"13:30"}, time.Hour)

	base, _ := time.Parse("2006-01-02 15:04", "2026-08-31 13:30")
	f.now = func() time.Time { return base }
	f.checkMeal()
	expectEvent(t, alerts, bus.EventSystemAlert)

	// Second poll 30s later lands in the same minute; cooldown holds.
	f.now = func() time.Time { return base.Add(30 * time.Second) }
	f.checkMeal()
	expectNoEvent(t, alerts)
}

func TestFeederNonMealMinuteIsQuiet(t *testing.T) {
	b := bus.New()
	alerts := collectEvents(b, bus.EventSystemAlert)
	f := NewFeeder(b, []string{"13:30"}, time.Hour)

	base, _ := time.Parse("2006-01-02 15:04", "2026-08-31 11:00")
	f.now = func() time.Time { return base }
	f.checkMeal()
	expectNoEvent(t, alerts)
}
