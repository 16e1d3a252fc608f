// Package desktop is the narrow boundary to OS-level automation. The core
// never shells out directly; it talks to the Automator interface so tests
// can substitute a recorder and the command set stays in one place.
package desktop

import "context"

// Automator covers every OS side effect the assistant performs. All calls
// are fire-and-forget from the core's viewpoint: success or an error,
// nothing else. Implementations may block and must be invoked off the
// request path (worker pool).
type Automator interface {
	// PressKey injects a named key the given number of times.
	PressKey(ctx context.Context, key string, presses int) error
	// TypeText injects literal text as keystrokes.
	TypeText(ctx context.Context, text string) error
	// Screenshot captures the screen to the given file path.
	Screenshot(ctx context.Context, path string) error
	// SetBrightness sets display brightness to a 0-100 percentage.
	SetBrightness(ctx context.Context, percent int) error
	// OpenURL opens a URL in the default browser.
	OpenURL(ctx context.Context, url string) error
	// OpenPath launches an application or file by absolute path.
	OpenPath(ctx context.Context, path string) error
	// Lock locks the workstation.
	Lock(ctx context.Context) error
	// Wake nudges the display awake with a harmless input event.
	Wake(ctx context.Context) error
}
