package reflex

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sayraos/sayra/core/config"
)

func testIdentity() config.IdentityConfig {
	return config.IdentityConfig{
		BotName:  "Sayra",
		BotRole:  "personal AI system",
		UserName: "Boss",
		UserRole: "creator",
	}
}

func TestMatchBotIdentity(t *testing.T) {
	m := NewMatcher(testIdentity())

	for _, text := range []string{"who are you?", "WHAT IS YOUR NAME", "give me an introduction"} {
		fact, ok := m.Match(text)
		assert.True(t, ok, "expected reflex hit for %q", text)
		assert.Equal(t, "identity_bot", fact.Kind)
		assert.Contains(t, fact.Text, "Sayra")
	}
}

func TestMatchUserIdentity(t *testing.T) {
	m := NewMatcher(testIdentity())

	fact, ok := m.Match("Do you know me?")
	assert.True(t, ok)
	assert.Equal(t, "identity_user", fact.Kind)
	assert.Contains(t, fact.Text, "Boss")
}

func TestMatchCreator(t *testing.T) {
	m := NewMatcher(testIdentity())

	fact, ok := m.Match("who created you")
	assert.True(t, ok)
	assert.Equal(t, "creator_fact", fact.Kind)
}

func TestNoMatchReturnsFalse(t *testing.T) {
	m := NewMatcher(testIdentity())

	_, ok := m.Match("play some jazz")
	assert.False(t, ok)

	_, ok = m.Match("")
	assert.False(t, ok)
}
