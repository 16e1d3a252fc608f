// Package voice owns the audio I/O boundary. The microphone is a single
// shared resource contested by the wake-word loop and on-demand voice
// triggers; MicGuard makes that ownership explicit.
package voice

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrMicBusy is returned when another consumer already holds the mic.
var ErrMicBusy = errors.New("microphone already in use")

// Transcriber converts one captured utterance into text. A blocking call;
// implementations wrap whatever speech engine is installed.
type Transcriber interface {
	Transcribe(ctx context.Context) (string, error)
}

// MicGuard serializes microphone access. At most one consumer may hold the
// mic at a time; the wake loop releases it while a voice trigger runs.
type MicGuard struct {
	sem chan struct{}
}

// NewMicGuard returns a guard with the mic available.
func NewMicGuard() *MicGuard {
	g := &MicGuard{sem: make(chan struct{}, 1)}
	g.sem <- struct{}{}
	return g
}

// Acquire blocks until the mic is free or the context ends.
func (g *MicGuard) Acquire(ctx context.Context) error {
	select {
	case <-g.sem:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire grabs the mic only if it is free right now.
func (g *MicGuard) TryAcquire() bool {
	select {
	case <-g.sem:
		return true
	default:
		return false
	}
}

// Release hands the mic back. Releasing an already-free mic is a bug in the
// caller; it is logged and dropped rather than deadlocking.
func (g *MicGuard) Release() {
	select {
	case g.sem <- struct{}{}:
	default:
		logrus.Warn("[VOICE] Release without matching Acquire")
	}
}

// Ear runs the always-on wake-word loop. It owns the mic by default and
// yields it whenever a voice trigger needs a direct capture.
type Ear struct {
	guard       *MicGuard
	transcriber Transcriber
	wakeWords   []string
	onUtterance func(text string)
}

// NewEar wires the wake loop. onUtterance receives the text that followed a
// wake word; it must not block for long.
func NewEar(guard *MicGuard, tr Transcriber, wakeWords []string, onUtterance func(string)) *Ear {
	if len(wakeWords) == 0 {
		wakeWords = []string{"sayra"}
	}
	return &Ear{
		guard:       guard,
		transcriber: tr,
		wakeWords:   wakeWords,
		onUtterance: onUtterance,
	}
}

// Listen loops until ctx is cancelled: hold the mic, transcribe, check for
// a wake word, hand the utterance up. Between captures the mic is released
// so voice triggers can cut in.
func (e *Ear) Listen(ctx context.Context) {
	logrus.Info("[VOICE] Wake loop started")
	for {
		if ctx.Err() != nil {
			logrus.Info("[VOICE] Wake loop stopped")
			return
		}

		if err := e.guard.Acquire(ctx); err != nil {
			return
		}
		text, err := e.transcriber.Transcribe(ctx)
		e.guard.Release()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logrus.WithError(err).Debug("[VOICE] Capture failed, retrying")
			continue
		}

		if utterance, woke := e.stripWakeWord(text); woke {
			e.onUtterance(utterance)
		}
	}
}

// stripWakeWord reports whether the text addressed the assistant and
// returns the remainder with the wake word removed.
func (e *Ear) stripWakeWord(text string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, w := range e.wakeWords {
		if idx := strings.Index(lower, w); idx >= 0 {
			rest := strings.TrimSpace(lower[idx+len(w):])
			rest = strings.TrimLeft(rest, ",.!? ")
			return rest, true
		}
	}
	return "", false
}

// CaptureOnce is the voice-trigger path: take the mic (waiting for the wake
// loop to yield it), capture a single utterance, release.
func (e *Ear) CaptureOnce(ctx context.Context) (string, error) {
	if err := e.guard.Acquire(ctx); err != nil {
		return "", err
	}
	defer e.guard.Release()
	return e.transcriber.Transcribe(ctx)
}
