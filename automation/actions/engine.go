// Package actions turns resolved intents into OS side effects. Every branch
// returns a human-readable status string; nothing here raises past Execute.
package actions

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/sayraos/sayra/automation/desktop"
	"github.com/sayraos/sayra/brain/router"
	"github.com/sayraos/sayra/core/config"
	"github.com/sayraos/sayra/pkg/worker"
	"github.com/sayraos/sayra/tools/websearch"
)

// Searcher is the slice of the web-search client the engine needs.
type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]websearch.Result, error)
}

// Engine executes command intents. Blocking branches go through the worker
// pool so callers on the request path are never stalled longer than the
// operation itself.
type Engine struct {
	desktop desktop.Automator
	search  Searcher
	pool    *worker.Pool

	apps          map[string]string
	folders       map[string]string
	screenshotDir string
}

// NewEngine wires the engine with its collaborators and resolves the
// symbolic folder table once at startup.
func NewEngine(auto desktop.Automator, search Searcher, pool *worker.Pool, paths config.PathsConfig) *Engine {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Engine{
		desktop: auto,
		search:  search,
		pool:    pool,
		apps: map[string]string{
			"files":      "/usr/bin/nautilus",
			"terminal":   "/usr/bin/gnome-terminal",
			"browser":    "/usr/bin/firefox",
			"calculator": "/usr/bin/gnome-calculator",
			"editor":     "/usr/bin/code",
		},
		folders: map[string]string{
			"downloads": filepath.Join(home, "Downloads"),
			"documents": filepath.Join(home, "Documents"),
			"desktop":   filepath.Join(home, "Desktop"),
			"pictures":  filepath.Join(home, "Pictures"),
			"music":     filepath.Join(home, "Music"),
			"videos":    filepath.Join(home, "Videos"),
			"protected": paths.Protected,
		},
		screenshotDir: paths.Screenshots,
	}
}

// Execute runs one task and always returns a status string. Internal panics
// are converted into an apology so a single bad branch cannot take down the
// caller.
func (e *Engine) Execute(ctx context.Context, intent router.Intent, entities map[string]string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("[ACTIONS] Panic executing %s: %v", intent, r)
			result = "Something went wrong while executing that, Boss. I logged the details."
		}
	}()

	switch intent {
	case router.IntentMusicPlay:
		return e.playMusic(ctx, entities["song"])
	case router.IntentWebSearch:
		return e.webSearch(ctx, entities["query"])
	case router.IntentOpenApp:
		return e.openApp(ctx, entities["app"])
	case router.IntentSystemControl:
		return e.systemControl(ctx, entities["action"])
	case router.IntentFileOperation:
		return e.fileOperation(entities)
	default:
		return fmt.Sprintf("I don't know how to handle %s yet.", intent)
	}
}

// playMusic opens a YouTube search for the song. Opening a browser blocks,
// so it is dispatched to the pool and reported optimistically.
func (e *Engine) playMusic(ctx context.Context, song string) string {
	song = strings.TrimSpace(song)
	if song == "" {
		return "You didn't tell me what to play."
	}

	target := "https://www.youtube.com/results?search_query=" + url.QueryEscape(song)
	ok := e.pool.TryDispatch(worker.Job{Key: "music", Handler: func(jobCtx context.Context) error {
		return e.desktop.OpenURL(jobCtx, target)
	}})
	if !ok {
		return "I'm a bit overloaded right now, try the music again in a moment."
	}
	return fmt.Sprintf("Playing %s for you.", song)
}

// Search scrapes results synchronously through the pool (the caller needs
// the text back) and returns them as a formatted block. An empty block with
// a nil error means the search worked but found nothing; callers deciding
// whether to ground a model answer must treat both failure shapes as
// "no results", never as content.
func (e *Engine) Search(ctx context.Context, query string) (string, error) {
	var results []websearch.Result
	err := e.pool.Do(ctx, "websearch", func(jobCtx context.Context) error {
		var searchErr error
		results, searchErr = e.search.Search(jobCtx, query, 3)
		return searchErr
	})
	if err != nil {
		return "", err
	}
	return websearch.Format(results), nil
}

// webSearch is the Execute branch: failures collapse into user-facing text.
func (e *Engine) webSearch(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return "You didn't tell me what to search for."
	}

	block, err := e.Search(ctx, query)
	if err != nil {
		logrus.WithError(err).Error("[ACTIONS] Web search failed")
		return fmt.Sprintf("I couldn't reach the web to search for %q.", query)
	}
	if block == "" {
		return fmt.Sprintf("I found nothing useful for %q.", query)
	}
	return block
}

// openApp tries the static table first; unknown names fall back to typing
// the name into the OS launcher, which is best-effort and unverifiable.
func (e *Engine) openApp(ctx context.Context, app string) string {
	app = strings.ToLower(strings.TrimSpace(app))
	if app == "" {
		return "You didn't tell me which app to open."
	}

	if path, known := e.apps[app]; known {
		if err := e.desktop.OpenPath(ctx, path); err != nil {
			logrus.WithError(err).Errorf("[ACTIONS] Failed to open %s", app)
			return fmt.Sprintf("I couldn't open %s, Boss.", app)
		}
		return fmt.Sprintf("Opening %s.", app)
	}

	if err := e.launcherFallback(ctx, app); err != nil {
		logrus.WithError(err).Errorf("[ACTIONS] Launcher fallback failed for %s", app)
		return fmt.Sprintf("I couldn't find %s on this machine.", app)
	}
	return fmt.Sprintf("Trying to launch %s.", app)
}

// launcherFallback drives the desktop launcher: open it, type the name,
// press enter. There is no way to confirm the app actually started.
func (e *Engine) launcherFallback(ctx context.Context, app string) error {
	if err := e.desktop.PressKey(ctx, "super", 1); err != nil {
		return err
	}
	time.Sleep(500 * time.Millisecond)
	if err := e.desktop.TypeText(ctx, app); err != nil {
		return err
	}
	time.Sleep(300 * time.Millisecond)
	return e.desktop.PressKey(ctx, "Return", 1)
}

func (e *Engine) systemControl(ctx context.Context, action string) string {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "volume_up":
		if err := e.desktop.PressKey(ctx, "XF86AudioRaiseVolume", 5); err != nil {
			return "I couldn't reach the volume keys."
		}
		return "Volume up."
	case "volume_down":
		if err := e.desktop.PressKey(ctx, "XF86AudioLowerVolume", 5); err != nil {
			return "I couldn't reach the volume keys."
		}
		return "Volume down."
	case "mute":
		if err := e.desktop.PressKey(ctx, "XF86AudioMute", 1); err != nil {
			return "I couldn't mute the audio."
		}
		return "Muted."
	case "screenshot":
		return e.screenshot(ctx)
	default:
		return fmt.Sprintf("Unknown system action %q.", action)
	}
}

// screenshot captures to a second-resolution timestamped file. Rapid
// repeated invocation within the same second overwrites; accepted risk.
func (e *Engine) screenshot(ctx context.Context) string {
	if err := os.MkdirAll(e.screenshotDir, 0o755); err != nil {
		logrus.WithError(err).Error("[ACTIONS] Cannot create screenshot dir")
		return "I couldn't prepare the screenshot folder."
	}

	name := "sayra-" + time.Now().Format("20060102-150405") + ".png"
	path := filepath.Join(e.screenshotDir, name)
	if err := e.desktop.Screenshot(ctx, path); err != nil {
		logrus.WithError(err).Error("[ACTIONS] Screenshot failed")
		return "The screenshot failed, Boss."
	}

	// Thumbnail for the UI banner; a failure here never fails the capture.
	if err := e.writeThumbnail(path); err != nil {
		logrus.WithError(err).Warn("[ACTIONS] Thumbnail generation failed")
	}
	return fmt.Sprintf("Screenshot saved as %s.", name)
}

func (e *Engine) writeThumbnail(path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return err
	}
	thumb := imaging.Resize(img, 320, 0, imaging.Lanczos)
	thumbPath := strings.TrimSuffix(path, ".png") + "-thumb.png"
	return imaging.Save(thumb, thumbPath)
}

// fileOperation moves, copies, or deletes files matched by a glob built
// from the target phrase. Each file is attempted independently; one bad
// file is logged and skipped, never aborting the batch.
func (e *Engine) fileOperation(entities map[string]string) string {
	action := strings.ToLower(strings.TrimSpace(entities["action"]))
	target := strings.TrimSpace(entities["target"])
	if target == "" {
		return "You didn't tell me which files to work on."
	}

	srcDir, ok := e.resolveFolder(entities["source"], "downloads")
	if !ok {
		return fmt.Sprintf("I don't know a folder called %q.", entities["source"])
	}
	dstDir, ok := e.resolveFolder(entities["destination"], "documents")
	if !ok {
		return fmt.Sprintf("I don't know a folder called %q.", entities["destination"])
	}

	pattern := filepath.Join(srcDir, targetPattern(target))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		logrus.WithError(err).Errorf("[ACTIONS] Bad glob %q", pattern)
		return fmt.Sprintf("I couldn't make sense of the pattern %q.", target)
	}
	if len(matches) == 0 {
		return fmt.Sprintf("No files found matching %q in %s.", target, srcDir)
	}

	processed := 0
	var totalBytes uint64
	for _, src := range matches {
		info, statErr := os.Stat(src)
		if statErr != nil || info.IsDir() {
			continue
		}

		var opErr error
		switch action {
		case "move":
			opErr = moveFile(src, filepath.Join(dstDir, filepath.Base(src)))
		case "copy":
			opErr = copyFile(src, filepath.Join(dstDir, filepath.Base(src)))
		case "delete":
			opErr = os.Remove(src)
		default:
			return fmt.Sprintf("I can move, copy, or delete, but not %q.", action)
		}

		if opErr != nil {
			logrus.WithError(opErr).Warnf("[ACTIONS] Skipping %s", src)
			continue
		}
		processed++
		totalBytes += uint64(info.Size())
	}

	verb := map[string]string{"move": "Moved", "copy": "Copied", "delete": "Deleted"}[action]
	return fmt.Sprintf("%s %d of %d files (%s).", verb, processed, len(matches), humanize.Bytes(totalBytes))
}

// Atmosphere adjusts the room for rest or work via display brightness.
func (e *Engine) Atmosphere(ctx context.Context, mode string) string {
	switch mode {
	case "rest":
		if err := e.desktop.SetBrightness(ctx, 30); err != nil {
			return "I couldn't dim the lights."
		}
		return "Rest mode on. Dimming things down."
	case "work":
		if err := e.desktop.SetBrightness(ctx, 90); err != nil {
			return "I couldn't adjust the brightness."
		}
		return "Work mode. Full brightness, let's go."
	default:
		return fmt.Sprintf("Unknown atmosphere mode %q.", mode)
	}
}

// resolveFolder maps a symbolic alias to an absolute path, applying the
// default alias when empty. Unknown aliases are an error, not a guess.
func (e *Engine) resolveFolder(alias, def string) (string, bool) {
	alias = strings.ToLower(strings.TrimSpace(alias))
	if alias == "" {
		alias = def
	}
	path, ok := e.folders[alias]
	return path, ok
}

// targetPattern collapses natural-language file classes into globs and
// passes explicit patterns through unchanged.
func targetPattern(target string) string {
	switch strings.ToLower(target) {
	case "all pdfs", "pdfs", "all pdf":
		return "*.pdf"
	case "all images", "images":
		return "*.jpg"
	case "all text", "text files":
		return "*.txt"
	case "all", "everything", "all files":
		return "*"
	}
	return target
}

func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	// Rename fails across filesystems; fall back to copy+remove.
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
