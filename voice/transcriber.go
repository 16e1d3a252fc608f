package voice

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ExecTranscriber records a short clip with arecord and transcribes it with
// a whisper CLI. Crude but dependency-free; swap in a streaming engine by
// implementing Transcriber.
type ExecTranscriber struct {
	RecordSeconds int
	Model         string
}

func NewExecTranscriber() *ExecTranscriber {
	return &ExecTranscriber{RecordSeconds: 5, Model: "base.en"}
}

func (t *ExecTranscriber) Transcribe(ctx context.Context) (string, error) {
	dir, err := os.MkdirTemp("", "sayra-audio-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	seconds := t.RecordSeconds
	if seconds <= 0 {
		seconds = 5
	}

	wav := filepath.Join(dir, "clip.wav")
	record := exec.CommandContext(ctx, "arecord",
		"-d", strconv.Itoa(seconds), "-f", "cd", "-t", "wav", wav)
	if err := record.Run(); err != nil {
		return "", err
	}

	out, err := exec.CommandContext(ctx, "whisper-cli",
		"--model", t.Model, "--no-timestamps", wav).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
