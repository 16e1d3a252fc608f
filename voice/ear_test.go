package voice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMicGuardSingleOwner(t *testing.T) {
	g := NewMicGuard()

	require.True(t, g.TryAcquire())
	assert.False(t, g.TryAcquire(), "second consumer must not get the mic")

	g.Release()
	assert.True(t, g.TryAcquire())
}

func TestMicGuardAcquireWaits(t *testing.T) {
	g := NewMicGuard()
	require.True(t, g.TryAcquire())

	acquired := make(chan struct{})
	go func() {
		if err := g.Acquire(context.Background()); err == nil {
			close(acquired)
		}
	}()

	select {
	case <-acquired:
		t.Fatal("acquired while held")
	case <-time.After(50 * time.Millisecond):
	}

	g.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("never acquired after release")
	}
}

func TestMicGuardAcquireHonorsContext(t *testing.T) {
	g := NewMicGuard()
	require.True(t, g.TryAcquire())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, g.Acquire(ctx))
}

func TestMicGuardDoubleReleaseIsSafe(t *testing.T) {
	g := NewMicGuard()
	g.Release() // mic already free; must not deadlock or panic
	assert.True(t, g.TryAcquire())
}

type scriptedTranscriber struct {
	lines chan string
}

func (s *scriptedTranscriber) Transcribe(ctx context.Context) (string, error) {
	select {
	case line := <-s.lines:
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestEarStripsWakeWord(t *testing.T) {
	e := NewEar(NewMicGuard(), &scriptedTranscriber{}, []string{"sayra"}, func(string) {})

	got, woke := e.stripWakeWord("Sayra, play some jazz")
	require.True(t, woke)
	assert.Equal(t, "play some jazz", got)

	_, woke = e.stripWakeWord("just talking to myself")
	assert.False(t, woke)
}

func TestEarListenDeliversUtterances(t *testing.T) {
	tr := &scriptedTranscriber{lines: make(chan string, 2)}
	tr.lines <- "background chatter"
	tr.lines <- "sayra open the browser"

	got := make(chan string, 1)
	e := NewEar(NewMicGuard(), tr, []string{"sayra"}, func(text string) {
		got <- text
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Listen(ctx)

	select {
	case text := <-got:
		assert.Equal(t, "open the browser", text)
	case <-time.After(time.Second):
		t.Fatal("utterance never delivered")
	}
}

func TestCaptureOnceWaitsForWakeLoop(t *testing.T) {
	guard := NewMicGuard()
	tr := &scriptedTranscriber{lines: make(chan string, 1)}
	e := NewEar(guard, tr, nil, func(string) {})

	// Simulate the wake loop holding the mic, then yielding.
	require.True(t, guard.TryAcquire())
	go func() {
		time.Sleep(30 * time.Millisecond)
		guard.Release()
	}()

	tr.lines <- "take a note"
	text, err := e.CaptureOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "take a note", text)

	// Mic must be free again afterwards.
	assert.True(t, guard.TryAcquire())
}
