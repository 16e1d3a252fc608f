package watchers

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sayraos/sayra/core/bus"
)

// Feeder nags about meals at fixed clock times and about water on a rolling
// interval. Meal matching is minute-resolution like the circadian enforcer;
// a cooldown after each fire stops the 30-second poll from repeating inside
// the same minute.
type Feeder struct {
	bus           *bus.EventBus
	mealTimes     []string // "HH:MM"
	waterInterval time.Duration
	pollInterval  time.Duration

	lastMealFire time.Time
	now          func() time.Time
}

func NewFeeder(b *bus.EventBus, mealTimes []string, waterInterval time.Duration) *Feeder {
	return &Feeder{
		bus:           b,
		mealTimes:     mealTimes,
		waterInterval: waterInterval,
		pollInterval:  30 * time.Second,
		now:           time.Now,
	}
}

// Run drives both reminder loops until ctx is cancelled.
func (f *Feeder) Run(ctx context.Context) {
	logrus.Infof("[FEEDER] Started (meals %v, water every %s)", f.mealTimes, f.waterInterval)

	mealTicker := time.NewTicker(f.pollInterval)
	waterTicker := time.NewTicker(f.waterInterval)
	defer mealTicker.Stop()
	defer waterTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("[FEEDER] Stopped")
			return
		case <-mealTicker.C:
			f.checkMeal()
		case <-waterTicker.C:
			f.bus.Publish(bus.EventSystemAlert, "Hydration check, Boss. Drink some water.")
		}
	}
}

// checkMeal fires when the current minute matches a meal time, with a
// cooldown so the same minute fires once.
func (f *Feeder) checkMeal() {
	nowT := f.now()
	if nowT.Sub(f.lastMealFire) < time.Minute {
		return
	}

	minute := nowT.Format("15:04")
	for _, meal := range f.mealTimes {
		if minute == meal {
			f.lastMealFire = nowT
			f.bus.Publish(bus.EventSystemAlert, fmt.Sprintf("It's %s. Time to eat something real.", meal))
			return
		}
	}
}
