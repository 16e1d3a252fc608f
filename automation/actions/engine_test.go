package actions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sayraos/sayra/brain/router"
	"github.com/sayraos/sayra/core/config"
	"github.com/sayraos/sayra/pkg/worker"
	"github.com/sayraos/sayra/tools/websearch"
)

type fakeDesktop struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (f *fakeDesktop) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.fail {
		return errors.New("automation unavailable")
	}
	return nil
}

func (f *fakeDesktop) callList() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeDesktop) PressKey(_ context.Context, key string, presses int) error {
	if presses < 1 {
		presses = 1
	}
	for i := 0; i < presses; i++ {
		if err := f.record("press:" + key); err != nil {
			return err
		}
	}
	return nil
}
func (f *fakeDesktop) TypeText(_ context.Context, text string) error {
	return f.record("type:" + text)
}
func (f *fakeDesktop) Screenshot(_ context.Context, path string) error {
	return f.record("screenshot:" + path)
}
func (f *fakeDesktop) SetBrightness(_ context.Context, percent int) error {
	return f.record("brightness")
}
func (f *fakeDesktop) OpenURL(_ context.Context, url string) error {
	return f.record("url:" + url)
}
func (f *fakeDesktop) OpenPath(_ context.Context, path string) error {
	return f.record("open:" + path)
}
func (f *fakeDesktop) Lock(_ context.Context) error { return f.record("lock") }
func (f *fakeDesktop) Wake(_ context.Context) error { return f.record("wake") }

type fakeSearcher struct {
	results []websearch.Result
	err     error
}

func (f *fakeSearcher) Search(context.Context, string, int) ([]websearch.Result, error) {
	return f.results, f.err
}

func newTestEngine(t *testing.T, auto *fakeDesktop, search Searcher) *Engine {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	pool := worker.NewPool(2, 8)
	pool.Start(ctx)
	t.Cleanup(func() {
		cancel()
		pool.Stop()
	})

	return NewEngine(auto, search, pool, config.PathsConfig{
		Screenshots: t.TempDir(),
		Protected:   t.TempDir(),
	})
}

func waitForCall(t *testing.T, auto *fakeDesktop, prefix string) string {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		for _, c := range auto.callList() {
			if strings.HasPrefix(c, prefix) {
				return c
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no call with prefix %q, got %v", prefix, auto.callList())
	return ""
}

func TestMusicPlayOpensYouTubeSearch(t *testing.T) {
	auto := &fakeDesktop{}
	e := newTestEngine(t, auto, &fakeSearcher{})

	result := e.Execute(context.Background(), router.IntentMusicPlay, map[string]string{"song": "bohemian rhapsody"})
	assert.Contains(t, result, "bohemian rhapsody")

	call := waitForCall(t, auto, "url:")
	assert.Contains(t, call, "youtube.com/results")
	assert.Contains(t, call, "bohemian+rhapsody")
}

func TestMusicPlayWithoutSong(t *testing.T) {
	e := newTestEngine(t, &fakeDesktop{}, &fakeSearcher{})
	result := e.Execute(context.Background(), router.IntentMusicPlay, map[string]string{})
	assert.Contains(t, result, "didn't tell me")
}

func TestWebSearchFormatsResults(t *testing.T) {
	search := &fakeSearcher{results: []websearch.Result{
		{Title: "Go slices", Snippet: "usage and internals"},
		{Title: "Go maps", Snippet: "in action"},
	}}
	e := newTestEngine(t, &fakeDesktop{}, search)

	result := e.Execute(context.Background(), router.IntentWebSearch, map[string]string{"query": "golang"})
	assert.Contains(t, result, "1. Go slices")
	assert.Contains(t, result, "2. Go maps")
}

func TestSearchSurfacesErrorsAndEmptyBlocks(t *testing.T) {
	failing := newTestEngine(t, &fakeDesktop{}, &fakeSearcher{err: errors.New("network down")})
	_, err := failing.Search(context.Background(), "golang")
	assert.Error(t, err)

	empty := newTestEngine(t, &fakeDesktop{}, &fakeSearcher{})
	block, err := empty.Search(context.Background(), "golang")
	assert.NoError(t, err)
	assert.Empty(t, block)
}

func TestWebSearchFailureIsApology(t *testing.T) {
	search := &fakeSearcher{err: errors.New("network down")}
	e := newTestEngine(t, &fakeDesktop{}, search)

	result := e.Execute(context.Background(), router.IntentWebSearch, map[string]string{"query": "golang"})
	assert.Contains(t, result, "couldn't reach the web")
	assert.NotContains(t, result, "network down")
}

func TestOpenAppKnownUsesTable(t *testing.T) {
	auto := &fakeDesktop{}
	e := newTestEngine(t, auto, &fakeSearcher{})

	result := e.Execute(context.Background(), router.IntentOpenApp, map[string]string{"app": "browser"})
	assert.Contains(t, result, "Opening browser")
	assert.Contains(t, auto.callList(), "open:/usr/bin/firefox")
}

func TestOpenAppUnknownFallsBackToLauncher(t *testing.T) {
	auto := &fakeDesktop{}
	e := newTestEngine(t, auto, &fakeSearcher{})

	result := e.Execute(context.Background(), router.IntentOpenApp, map[string]string{"app": "spotify"})
	assert.Contains(t, result, "Trying to launch spotify")

	calls := auto.callList()
	assert.Contains(t, calls, "press:super")
	assert.Contains(t, calls, "type:spotify")
	assert.Contains(t, calls, "press:Return")
}

func TestSystemControlVolume(t *testing.T) {
	auto := &fakeDesktop{}
	e := newTestEngine(t, auto, &fakeSearcher{})

	result := e.Execute(context.Background(), router.IntentSystemControl, map[string]string{"action": "volume_up"})
	assert.Equal(t, "Volume up.", result)

	var presses int
	for _, c := range auto.callList() {
		if c == "press:XF86AudioRaiseVolume" {
			presses++
		}
	}
	assert.Equal(t, 5, presses)
}

func TestSystemControlScreenshot(t *testing.T) {
	auto := &fakeDesktop{}
	e := newTestEngine(t, auto, &fakeSearcher{})

	result := e.Execute(context.Background(), router.IntentSystemControl, map[string]string{"action": "screenshot"})
	assert.Contains(t, result, "Screenshot saved as sayra-")

	call := waitForCall(t, auto, "screenshot:")
	assert.True(t, strings.HasSuffix(call, ".png"))
}

func TestSystemControlUnknownAction(t *testing.T) {
	e := newTestEngine(t, &fakeDesktop{}, &fakeSearcher{})
	result := e.Execute(context.Background(), router.IntentSystemControl, map[string]string{"action": "reboot"})
	assert.Contains(t, result, "Unknown system action")
}

func TestFileOperationMovesMatchedFiles(t *testing.T) {
	e := newTestEngine(t, &fakeDesktop{}, &fakeSearcher{})
	src := t.TempDir()
	dst := t.TempDir()
	e.folders["downloads"] = src
	e.folders["documents"] = dst

	for _, name := range []string{"a.pdf", "b.pdf", "keep.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(src, name), []byte("data"), 0o644))
	}

	result := e.Execute(context.Background(), router.IntentFileOperation, map[string]string{
		"action": "move",
		"target": "all pdfs",
	})
	assert.Contains(t, result, "Moved 2 of 2 files")

	assert.FileExists(t, filepath.Join(dst, "a.pdf"))
	assert.FileExists(t, filepath.Join(dst, "b.pdf"))
	assert.NoFileExists(t, filepath.Join(src, "a.pdf"))
	assert.FileExists(t, filepath.Join(src, "keep.txt"))
}

func TestFileOperationDelete(t *testing.T) {
	e := newTestEngine(t, &fakeDesktop{}, &fakeSearcher{})
	src := t.TempDir()
	e.folders["downloads"] = src
	require.NoError(t, os.WriteFile(filepath.Join(src, "junk.txt"), []byte("x"), 0o644))

	result := e.Execute(context.Background(), router.IntentFileOperation, map[string]string{
		"action": "delete",
		"target": "all text",
	})
	assert.Contains(t, result, "Deleted 1 of 1 files")
	assert.NoFileExists(t, filepath.Join(src, "junk.txt"))
}

func TestFileOperationNoMatches(t *testing.T) {
	e := newTestEngine(t, &fakeDesktop{}, &fakeSearcher{})
	e.folders["downloads"] = t.TempDir()

	result := e.Execute(context.Background(), router.IntentFileOperation, map[string]string{
		"action": "move",
		"target": "all pdfs",
	})
	assert.Contains(t, result, "No files found")
}

func TestFileOperationSkipsFailedFiles(t *testing.T) {
	e := newTestEngine(t, &fakeDesktop{}, &fakeSearcher{})
	src := t.TempDir()
	dst := t.TempDir()
	e.folders["downloads"] = src
	e.folders["documents"] = dst

	require.NoError(t, os.WriteFile(filepath.Join(src, "ok.pdf"), []byte("x"), 0o644))
	// A directory matching the glob cannot be moved as a file; it is skipped.
	require.NoError(t, os.Mkdir(filepath.Join(src, "dir.pdf"), 0o755))

	result := e.Execute(context.Background(), router.IntentFileOperation, map[string]string{
		"action": "move",
		"target": "all pdfs",
	})
	assert.Contains(t, result, "Moved 1 of 2 files")
	assert.FileExists(t, filepath.Join(dst, "ok.pdf"))
}

func TestFileOperationUnknownFolder(t *testing.T) {
	e := newTestEngine(t, &fakeDesktop{}, &fakeSearcher{})
	result := e.Execute(context.Background(), router.IntentFileOperation, map[string]string{
		"action": "move",
		"target": "all pdfs",
		"source": "attic",
	})
	assert.Contains(t, result, `don't know a folder called "attic"`)
}

func TestAtmosphereModes(t *testing.T) {
	auto := &fakeDesktop{}
	e := newTestEngine(t, auto, &fakeSearcher{})

	assert.Contains(t, e.Atmosphere(context.Background(), "rest"), "Rest mode")
	assert.Contains(t, e.Atmosphere(context.Background(), "work"), "Work mode")
	assert.Contains(t, e.Atmosphere(context.Background(), "party"), "Unknown atmosphere")
}

func TestExecuteNeverPanics(t *testing.T) {
	e := newTestEngine(t, &fakeDesktop{}, &fakeSearcher{})
	e.pool = nil // force a nil dereference inside the branch

	result := e.Execute(context.Background(), router.IntentMusicPlay, map[string]string{"song": "x"})
	assert.Contains(t, result, "Something went wrong")
}
