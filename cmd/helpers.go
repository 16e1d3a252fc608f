package cmd

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// inputIdleTime asks xprintidle how long since the last input event.
func inputIdleTime(ctx context.Context) (time.Duration, error) {
	out, err := exec.CommandContext(ctx, "xprintidle").Output()
	if err != nil {
		return 0, err
	}
	millis, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(millis) * time.Millisecond, nil
}
