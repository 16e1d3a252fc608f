package desktop

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// ExecAutomator drives a Linux desktop through the standard tooling
// (xdotool, scrot, brightnessctl, xdg-open, loginctl). Each call shells out
// and waits; route these through the worker pool.
type ExecAutomator struct{}

// NewExecAutomator returns the default OS-command automator.
func NewExecAutomator() *ExecAutomator {
	return &ExecAutomator{}
}

func (a *ExecAutomator) run(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		logrus.WithError(err).Debugf("[DESKTOP] %s %s: %s", name, strings.Join(args, " "), string(out))
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (a *ExecAutomator) PressKey(ctx context.Context, key string, presses int) error {
	if presses < 1 {
		presses = 1
	}
	for i := 0; i < presses; i++ {
		if err := a.run(ctx, "xdotool", "key", key); err != nil {
			return err
		}
	}
	return nil
}

func (a *ExecAutomator) TypeText(ctx context.Context, text string) error {
	return a.run(ctx, "xdotool", "type", "--delay", "50", text)
}

func (a *ExecAutomator) Screenshot(ctx context.Context, path string) error {
	return a.run(ctx, "scrot", "--overwrite", path)
}

func (a *ExecAutomator) SetBrightness(ctx context.Context, percent int) error {
	if percent < 1 {
		percent = 1
	}
	if percent > 100 {
		percent = 100
	}
	return a.run(ctx, "brightnessctl", "set", fmt.Sprintf("%d%%", percent))
}

func (a *ExecAutomator) OpenURL(ctx context.Context, url string) error {
	return a.run(ctx, "xdg-open", url)
}

func (a *ExecAutomator) OpenPath(ctx context.Context, path string) error {
	return a.run(ctx, "xdg-open", path)
}

func (a *ExecAutomator) Lock(ctx context.Context) error {
	return a.run(ctx, "loginctl", "lock-session")
}

// Wake presses space, which is harmless but wakes the display.
func (a *ExecAutomator) Wake(ctx context.Context) error {
	return a.PressKey(ctx, "space", 1)
}
