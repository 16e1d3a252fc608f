// Package assistant wires the routing, generation, execution, and delivery
// layers into the command pipeline. One Orchestrator instance handles every
// inbound channel: REST, websocket, and voice.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sayraos/sayra/automation/actions"
	"github.com/sayraos/sayra/brain"
	"github.com/sayraos/sayra/brain/router"
	"github.com/sayraos/sayra/core/bus"
	"github.com/sayraos/sayra/core/config"
	ws "github.com/sayraos/sayra/ui/websocket"
	"github.com/sayraos/sayra/voice"
)

// Router narrows the intent router for testability.
type Router interface {
	Route(ctx context.Context, text string) router.Decision
}

// Responder narrows the brain.
type Responder interface {
	Respond(ctx context.Context, prompt, extraContext string) string
	Style(ctx context.Context, fact string) string
}

// Executor narrows the action engine. Search is separate from Execute so
// the orchestrator can tell real result blocks from failure text before
// grounding a model answer on them.
type Executor interface {
	Execute(ctx context.Context, intent router.Intent, entities map[string]string) string
	Search(ctx context.Context, query string) (string, error)
	Atmosphere(ctx context.Context, mode string) string
}

// Speaker narrows voiced output.
type Speaker interface {
	Say(ctx context.Context, text string)
}

// Listener captures one on-demand utterance (the voice-trigger path).
type Listener interface {
	CaptureOnce(ctx context.Context) (string, error)
}

// Notifier pushes UI frames; injected so tests can observe them.
type Notifier func(code, message string, result any)

// Orchestrator runs the full utterance pipeline.
type Orchestrator struct {
	router   Router
	brain    Responder
	engine   Executor
	bus      *bus.EventBus
	mouth    Speaker
	ear      Listener
	notify   Notifier
	identity config.IdentityConfig
	shutdown func()
}

// New builds an orchestrator. shutdown is invoked exactly once when a
// SYSTEM_SHUTDOWN event arrives; pass the root context cancel.
func New(r Router, b Responder, e Executor, eb *bus.EventBus, mouth Speaker, ear Listener, notify Notifier, identity config.IdentityConfig, shutdown func()) *Orchestrator {
	if notify == nil {
		notify = func(string, string, any) {}
	}
	return &Orchestrator{
		router:   r,
		brain:    b,
		engine:   e,
		bus:      eb,
		mouth:    mouth,
		ear:      ear,
		notify:   notify,
		identity: identity,
		shutdown: shutdown,
	}
}

// HandleText runs one utterance through the pipeline and returns the reply.
func (o *Orchestrator) HandleText(ctx context.Context, text string) string {
	o.notify(ws.CodeState, "processing", nil)
	defer o.notify(ws.CodeState, "idle", nil)

	reply := o.dispatch(ctx, text)

	o.notify(ws.CodeBotMessage, reply, nil)
	o.mouth.Say(ctx, reply)
	return reply
}

// ProcessText is the websocket inbound path; the reply travels back as a
// BOT_MESSAGE frame, so the return value is dropped here.
func (o *Orchestrator) ProcessText(ctx context.Context, text string) {
	o.HandleText(ctx, text)
}

// VoiceTrigger captures one utterance from the mic and feeds it through the
// normal pipeline.
func (o *Orchestrator) VoiceTrigger(ctx context.Context) {
	o.notify(ws.CodeState, "listening", nil)

	text, err := o.ear.CaptureOnce(ctx)
	if err != nil {
		logrus.WithError(err).Warn("[ASSISTANT] Voice capture failed")
		o.notify(ws.CodeState, "idle", nil)
		return
	}

	o.notify(ws.CodeTranscription, text, nil)
	o.HandleText(ctx, text)
}

// dispatch resolves control phrases first, then routes.
func (o *Orchestrator) dispatch(ctx context.Context, text string) string {
	switch normalized := strings.ToLower(strings.TrimSpace(text)); normalized {
	case "exit", "quit", "bye":
		o.bus.Publish(bus.EventSystemShutdown, nil)
		return fmt.Sprintf("Going dark. See you soon, %s.", o.identity.UserName)
	case "sentry mode on":
		o.bus.Publish(bus.EventEnableSentry, nil)
		return "Sentry mode engaged. I'm watching the desk."
	case "sentry mode off":
		o.bus.Publish(bus.EventDisableSentry, nil)
		return "Sentry mode off. Standing down."
	case "rest mode":
		return o.engine.Atmosphere(ctx, "rest")
	case "work mode":
		return o.engine.Atmosphere(ctx, "work")
	}

	decision := o.router.Route(ctx, text)
	switch decision.Kind {
	case router.KindReflex:
		return o.brain.Style(ctx, decision.Fact)

	case router.KindCommand:
		return o.runTask(ctx, decision.Task)

	case router.KindBatch:
		results := make([]string, 0, len(decision.Tasks))
		for _, task := range decision.Tasks {
			results = append(results, o.runTask(ctx, task))
		}
		return strings.Join(results, "\n")

	default:
		return o.brain.Respond(ctx, text, "")
	}
}

// runTask executes one task. Web searches get a second pass through the
// brain so raw scraped results come back as a grounded, in-persona answer.
func (o *Orchestrator) runTask(ctx context.Context, task router.Task) string {
	if task.Intent == router.IntentWebSearch {
		return o.searchAndAnswer(ctx, task.Entities["query"])
	}
	return o.engine.Execute(ctx, task.Intent, task.Entities)
}

// searchAndAnswer grounds the brain on scraped results. Failure text and
// empty result sets never reach the model as "results".
func (o *Orchestrator) searchAndAnswer(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return "You didn't tell me what to search for."
	}

	block, err := o.engine.Search(ctx, query)
	if err != nil {
		logrus.WithError(err).Error("[ASSISTANT] Web search failed")
		return fmt.Sprintf("I couldn't reach the web to search for %q.", query)
	}
	if strings.TrimSpace(block) == "" {
		return fmt.Sprintf("I found nothing useful for %q.", query)
	}

	grounded := "Web Search Mode. Answer using only these results:\n" + block
	return o.brain.Respond(ctx, query, grounded)
}

// BindBus routes watcher events to the UI, the speaker, and the shutdown
// path. Call once during startup.
func (o *Orchestrator) BindBus(ctx context.Context) {
	speakAlert := func(evt bus.Event) {
		msg, _ := evt.Payload.(string)
		if msg == "" {
			return
		}
		o.notify(ws.CodeAlert, msg, nil)
		o.mouth.Say(ctx, msg)
	}

	o.bus.Subscribe(bus.EventVisionBreak, speakAlert)
	o.bus.Subscribe(bus.EventSystemAlert, speakAlert)
	o.bus.Subscribe(bus.EventLockdownWarning, speakAlert)

	o.bus.Subscribe(bus.EventUserReturned, func(bus.Event) {
		o.notify(ws.CodeUserStatus, "active", nil)
		o.mouth.Say(ctx, fmt.Sprintf("Welcome back, %s.", o.identity.UserName))
	})
	o.bus.Subscribe(bus.EventUserAway, func(bus.Event) {
		o.notify(ws.CodeUserStatus, "away", nil)
	})

	o.bus.Subscribe(bus.EventSystemShutdown, func(bus.Event) {
		o.notify(ws.CodeSystemStatus, "shutting down", nil)
		logrus.Info("[ASSISTANT] Shutdown event received")
		if o.shutdown != nil {
			o.shutdown()
		}
	})
}

var _ Executor = (*actions.Engine)(nil)
var _ Responder = (*brain.Brain)(nil)
var _ Speaker = (*voice.Mouth)(nil)
var _ Listener = (*voice.Ear)(nil)
