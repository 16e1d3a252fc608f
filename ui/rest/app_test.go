package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sayraos/sayra/pkg/utils"
)

type fakeAssistant struct {
	lastText string
}

func (f *fakeAssistant) HandleText(_ context.Context, text string) string {
	f.lastText = text
	return "done: " + text
}

type fakeVitals struct{}

func (fakeVitals) Vitals() map[string]any {
	return map[string]any{"memories": 42, "user_present": true}
}

func newTestApp(t *testing.T) (*fiber.App, *fakeAssistant) {
	t.Helper()
	assistant := &fakeAssistant{}
	app := fiber.New()
	NewApp(assistant, fakeVitals{}, "v0.3.0").RegisterRoutes(app)
	return app, assistant
}

func decode(t *testing.T, body io.Reader) utils.ResponseData {
	t.Helper()
	var data utils.ResponseData
	require.NoError(t, json.NewDecoder(body).Decode(&data))
	return data
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := decode(t, resp.Body)
	assert.Equal(t, "SUCCESS", data.Code)
	assert.Contains(t, data.Message, "online")
}

func TestVitalsEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/vitals", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := decode(t, resp.Body)
	results, ok := data.Results.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 42, results["memories"])
}

func TestCommandEndpoint(t *testing.T) {
	app, assistant := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/command", strings.NewReader(`{"text":"open the browser"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "open the browser", assistant.lastText)

	data := decode(t, resp.Body)
	results := data.Results.(map[string]any)
	assert.Equal(t, "done: open the browser", results["reply"])
}

func TestCommandEndpointRejectsEmptyText(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/command", strings.NewReader(`{"text":"   "}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "EMPTY_COMMAND", decode(t, resp.Body).Code)
}

func TestCommandEndpointRejectsBadBody(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/command", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
