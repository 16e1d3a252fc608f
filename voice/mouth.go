package voice

import (
	"context"
	"os/exec"
	"sync"

	"github.com/sirupsen/logrus"
)

// Speaker renders text as audio.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Mouth serializes speech so two responses never talk over each other.
// Speak errors are logged and swallowed; a broken audio stack must never
// fail the response pipeline.
type Mouth struct {
	mu      sync.Mutex
	speaker Speaker
}

func NewMouth(speaker Speaker) *Mouth {
	return &Mouth{speaker: speaker}
}

// Say speaks the text, one utterance at a time.
func (m *Mouth) Say(ctx context.Context, text string) {
	if text == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.speaker.Speak(ctx, text); err != nil {
		logrus.WithError(err).Warn("[VOICE] Speech output failed")
	}
}

// ExecSpeaker shells out to espeak-ng. Good enough for a headless box; swap
// in a proper TTS engine by implementing Speaker.
type ExecSpeaker struct{}

func (ExecSpeaker) Speak(ctx context.Context, text string) error {
	return exec.CommandContext(ctx, "espeak-ng", text).Run()
}

// NoopSpeaker is used when audio output is disabled.
type NoopSpeaker struct{}

func (NoopSpeaker) Speak(context.Context, string) error { return nil }

// NoopTranscriber is used when audio input is disabled; it blocks until the
// context ends so the wake loop idles instead of spinning.
type NoopTranscriber struct{}

func (NoopTranscriber) Transcribe(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
