// Package rest exposes the HTTP surface: health, runtime vitals, and a
// synchronous text-command endpoint for clients that don't hold a
// websocket open.
package rest

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sayraos/sayra/pkg/utils"
)

// Assistant is the slice of the orchestrator the REST layer needs.
type Assistant interface {
	HandleText(ctx context.Context, text string) string
}

// VitalsProvider returns the runtime counters shown on the dashboard.
type VitalsProvider interface {
	Vitals() map[string]any
}

type commandRequest struct {
	Text string `json:"text"`
}

// App bundles route handlers with their collaborators.
type App struct {
	assistant Assistant
	vitals    VitalsProvider
	version   string
}

func NewApp(assistant Assistant, vitals VitalsProvider, version string) *App {
	return &App{assistant: assistant, vitals: vitals, version: version}
}

// RegisterRoutes mounts the API under the given router.
func (a *App) RegisterRoutes(app fiber.Router) {
	api := app.Group("/api")
	api.Get("/health", a.health)
	api.Get("/vitals", a.getVitals)
	api.Post("/command", a.postCommand)
}

func (a *App) health(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Sayra is online",
		Results: fiber.Map{"version": a.version},
	})
}

func (a *App) getVitals(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Vitals snapshot",
		Results: a.vitals.Vitals(),
	})
}

func (a *App) postCommand(c *fiber.Ctx) error {
	var req commandRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ResponseData{
			Status:  fiber.StatusBadRequest,
			Code:    "INVALID_BODY",
			Message: "Body must be JSON with a text field",
		})
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ResponseData{
			Status:  fiber.StatusBadRequest,
			Code:    "EMPTY_COMMAND",
			Message: "Nothing to process",
		})
	}

	reply := a.assistant.HandleText(c.UserContext(), text)
	return c.JSON(utils.ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Command processed",
		Results: fiber.Map{"reply": reply},
	})
}
