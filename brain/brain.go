// Package brain generates the assistant's natural-language replies. It picks
// between the local and cloud model per utterance, grounds prompts in
// recalled memory, and never lets a model failure escape as an error.
package brain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sayraos/sayra/brain/memory"
	"github.com/sayraos/sayra/brain/providers"
	"github.com/sayraos/sayra/core/config"
)

const saveTimeout = 15 * time.Second

// Brain is the hybrid response generator.
type Brain struct {
	local         providers.Provider
	cloud         providers.Provider
	mem           memory.Store
	identity      config.IdentityConfig
	cloudKeywords []string
	recallK       int
}

// New wires a brain over its two providers and the memory store.
func New(local, cloud providers.Provider, mem memory.Store, brainCfg config.BrainConfig, identity config.IdentityConfig) *Brain {
	return &Brain{
		local:         local,
		cloud:         cloud,
		mem:           mem,
		identity:      identity,
		cloudKeywords: brainCfg.CloudKeywords,
		recallK:       brainCfg.RecallK,
	}
}

// Respond generates a reply for the prompt, optionally framed by extra
// context (e.g. web search results). It always returns user-facing text;
// model failures become apology strings that name the failing subsystem.
func (b *Brain) Respond(ctx context.Context, prompt, extraContext string) string {
	userPrompt := b.composePrompt(ctx, prompt, extraContext)

	var reply string
	var err error
	if b.shouldUseCloud(prompt) {
		reply, err = b.cloud.Chat(ctx, b.systemPrompt(), userPrompt)
		if err != nil {
			logrus.WithError(err).Error("[BRAIN] Cloud model failed")
			reply = fmt.Sprintf("Sorry %s, my cloud link is down right now. Try again in a bit.", b.identity.UserName)
		}
	} else {
		reply, err = b.local.Chat(ctx, b.systemPrompt(), userPrompt)
		if err != nil {
			logrus.WithError(err).Error("[BRAIN] Local model failed")
			reply = fmt.Sprintf("Sorry %s, my local brain is not responding. Check if the model server is running.", b.identity.UserName)
		}
	}

	b.remember(prompt)
	return reply
}

// Style restates a terse fact in the assistant's persona without changing
// its meaning. On model failure the raw fact comes back unchanged; the
// answer is never lost, only the flourish.
func (b *Brain) Style(ctx context.Context, fact string) string {
	instruction := fmt.Sprintf(
		"Restate the following fact in your own voice. Keep the meaning exactly; do not add new information.\nFact: %s", fact)

	styled, err := b.local.Chat(ctx, b.systemPrompt(), instruction)
	if err != nil || strings.TrimSpace(styled) == "" {
		logrus.WithError(err).Warn("[BRAIN] Styling failed, returning raw fact")
		return fact
	}
	return styled
}

// shouldUseCloud escalates higher-stakes or higher-complexity requests to
// the networked model; everything else stays local.
func (b *Brain) shouldUseCloud(prompt string) bool {
	lower := strings.ToLower(prompt)
	for _, kw := range b.cloudKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// composePrompt injects recalled memories and tool context ahead of the
// live query.
func (b *Brain) composePrompt(ctx context.Context, prompt, extraContext string) string {
	var sb strings.Builder

	memories, err := b.mem.Recall(ctx, prompt, b.recallK)
	if err != nil {
		logrus.WithError(err).Warn("[BRAIN] Memory recall failed")
	}
	if len(memories) > 0 {
		sb.WriteString("Relevant things you remember:\n")
		for _, m := range memories {
			sb.WriteString("- ")
			sb.WriteString(m)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if extraContext != "" {
		sb.WriteString(extraContext)
		sb.WriteString("\n\n")
	}

	sb.WriteString(prompt)
	return sb.String()
}

// remember persists the utterance without blocking the response path. Very
// short utterances are noise and are skipped.
func (b *Brain) remember(prompt string) {
	if !worthRemembering(prompt) {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := b.mem.Save(ctx, prompt, memory.SourceUser); err != nil {
			logrus.WithError(err).Warn("[BRAIN] Memory save failed")
		}
	}()
}

// worthRemembering gates memory writes to utterances longer than two words.
func worthRemembering(text string) bool {
	return len(strings.Fields(text)) > 2
}

func (b *Brain) systemPrompt() string {
	return fmt.Sprintf(`You are %s, a %s built by %s.
Your goal is to protect and assist %s.
Current mode: %s.

Guidelines:
1. Address the user as '%s'.
2. Be concise. Style: %s.
3. Never hallucinate. If you don't know, say 'Data not available'.`,
		b.identity.BotName, b.identity.BotRole, b.identity.UserName,
		b.identity.UserName, b.identity.Mode,
		b.identity.UserName, b.identity.LanguageStyle)
}
