package watchers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResponderLocksAfterDelay(t *testing.T) {
	auto := &lockRecorder{}
	r := NewLockResponder(auto, 20*time.Millisecond)

	r.onAway()
	assert.Eventually(t, func() bool { return auto.lockCount() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestResponderReturnCancelsPendingLock(t *testing.T) {
	auto := &lockRecorder{}
	r := NewLockResponder(auto, 50*time.Millisecond)

	r.onAway()
	r.onReturned()

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, auto.lockCount(), "cancelled lock must not fire")
}

func TestResponderReturnWithoutPendingIsNoop(t *testing.T) {
	auto := &lockRecorder{}
	r := NewLockResponder(auto, 50*time.Millisecond)

	assert.NotPanics(t, func() { r.onReturned() })
}

func TestResponderDuplicateAwayKeepsOneTimer(t *testing.T) {
	auto := &lockRecorder{}
	r := NewLockResponder(auto, 20*time.Millisecond)

	r.onAway()
	r.onAway()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, auto.lockCount())
}
