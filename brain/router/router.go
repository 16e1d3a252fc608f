// Package router classifies free-form utterances into routing decisions via
// three escalating tiers: reflex patterns, keyword heuristics, and a
// schema-constrained local-model planner.
package router

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sayraos/sayra/brain/providers"
	"github.com/sayraos/sayra/brain/reflex"
)

const plannerSystemPrompt = `You are the intent classifier for a personal desktop assistant.
Analyze the user input and output a JSON object.

Possible intents:
- MUSIC_PLAY (user wants to hear a song or video; entity "song")
- WEB_SEARCH (user wants to look something up; entity "query")
- OPEN_APP (user wants to launch an application; entity "app")
- SYSTEM_CONTROL (entity "action": volume_up, volume_down, mute, screenshot)
- FILE_OPERATION (entities "action": move|copy|delete, "target" file pattern,
  optional "source" and "destination" folder names like downloads, documents)
- CHAT (general conversation, questions, coding help)

If the input contains MULTIPLE requests, split them into multiple tasks in
the order they were asked.

Format:
{"tasks": [{"intent": "INTENT_NAME", "entities": {"song": "...", "query": "...", "app": "...", "action": "...", "target": "...", "source": "...", "destination": "..."}}]}`

// plannerSchema constrains the model output so a well-behaved backend cannot
// hand us prose instead of a plan.
var plannerSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"tasks": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"intent": map[string]any{
						"type": "string",
						"enum": []string{"MUSIC_PLAY", "WEB_SEARCH", "OPEN_APP", "SYSTEM_CONTROL", "FILE_OPERATION", "CHAT"},
					},
					"entities": map[string]any{
						"type":                 "object",
						"additionalProperties": map[string]any{"type": "string"},
					},
				},
				"required": []string{"intent"},
			},
		},
	},
	"required": []string{"tasks"},
}

type plannerResponse struct {
	Tasks []Task `json:"tasks"`
}

// Router produces one Decision per utterance.
type Router struct {
	reflex  *reflex.Matcher
	planner providers.StructuredProvider
}

// New builds a router over the given reflex matcher and planning model.
func New(reflexMatcher *reflex.Matcher, planner providers.StructuredProvider) *Router {
	return &Router{reflex: reflexMatcher, planner: planner}
}

// Route classifies one utterance. The call may suspend on model inference in
// the planning tier; reflex and keyword hits never reach a model.
func (r *Router) Route(ctx context.Context, text string) Decision {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return chatDecision()
	}

	// Tier 1: reflex identity facts.
	if fact, ok := r.reflex.Match(text); ok {
		return reflexDecision(fact.Text)
	}

	// Tier 2: keyword fast paths for the highest-frequency commands.
	if task, ok := matchKeywords(text); ok {
		return commandDecision(task)
	}

	// Tier 3: local-model planning.
	return r.plan(ctx, text)
}

// matchKeywords owns a fixed allow-list of prefixes so the most common
// commands resolve without model latency or misclassification risk.
func matchKeywords(text string) (Task, bool) {
	for _, prefix := range []string{"play ", "listen "} {
		if strings.HasPrefix(text, prefix) {
			song := strings.TrimSpace(strings.TrimPrefix(text, prefix))
			return Task{Intent: IntentMusicPlay, Entities: map[string]string{"song": song}}, true
		}
	}

	for _, prefix := range []string{"open ", "launch "} {
		if strings.HasPrefix(text, prefix) {
			app := strings.TrimSpace(strings.TrimPrefix(text, prefix))
			return Task{Intent: IntentOpenApp, Entities: map[string]string{"app": app}}, true
		}
	}

	for _, prefix := range []string{"search ", "google ", "find "} {
		if strings.HasPrefix(text, prefix) {
			query := strings.TrimSpace(strings.TrimPrefix(text, prefix))
			return Task{Intent: IntentWebSearch, Entities: map[string]string{"query": query}}, true
		}
	}

	if strings.Contains(text, "screenshot") {
		return Task{Intent: IntentSystemControl, Entities: map[string]string{"action": "screenshot"}}, true
	}

	return Task{}, false
}

// plan asks the local model for a structured task list. Every failure mode
// here fails soft to a chat decision; the router never surfaces a model or
// parse error to the caller.
func (r *Router) plan(ctx context.Context, text string) Decision {
	raw, err := r.planner.ChatStructured(ctx, plannerSystemPrompt, "Input: "+text, "intent_plan", plannerSchema)
	if err != nil {
		logrus.WithError(err).Warn("[ROUTER] Planner call failed, falling back to chat")
		return chatDecision()
	}

	var resp plannerResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		logrus.WithError(err).Warn("[ROUTER] Unparseable plan, falling back to chat")
		return chatDecision()
	}

	tasks := normalizeTasks(resp.Tasks)
	switch {
	case len(tasks) == 0:
		return chatDecision()
	case len(tasks) == 1 && tasks[0].Intent == IntentChat:
		return chatDecision()
	case len(tasks) == 1:
		return commandDecision(tasks[0])
	default:
		return batchDecision(tasks)
	}
}

// normalizeTasks uppercases intents, drops unknown ones, and guarantees a
// non-nil entity map on every surviving task.
func normalizeTasks(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		t.Intent = Intent(strings.ToUpper(strings.TrimSpace(string(t.Intent))))
		if !knownIntents[t.Intent] {
			logrus.Warnf("[ROUTER] Dropping task with unknown intent %q", t.Intent)
			continue
		}
		if t.Entities == nil {
			t.Entities = map[string]string{}
		}
		out = append(out, t)
	}
	return out
}
