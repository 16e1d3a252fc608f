// Package reflex answers identity questions from the static profile without
// ever touching a language model. It is the first classification tier and
// must stay cheap enough to run on every utterance.
package reflex

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sayraos/sayra/core/config"
)

var (
	botIdentityPattern  = regexp.MustCompile(`(who are you|your name|intro\b|introduction)`)
	userIdentityPattern = regexp.MustCompile(`(who am i|my name|do you know me)`)
	creatorPattern      = regexp.MustCompile(`(who made you|who created you|creator)`)
)

// Fact is an immediate, pattern-matched factual answer.
type Fact struct {
	Kind string
	Text string
}

// Matcher resolves identity questions against the ground-truth profile.
type Matcher struct {
	identity config.IdentityConfig
}

// NewMatcher creates a matcher bound to the loaded identity profile.
func NewMatcher(identity config.IdentityConfig) *Matcher {
	return &Matcher{identity: identity}
}

// Match checks the text against the known identity patterns. It returns the
// matched fact and true, or the zero Fact and false when nothing matches.
// A miss is not an error; the caller continues to the next routing tier.
func (m *Matcher) Match(text string) (Fact, bool) {
	text = strings.ToLower(strings.TrimSpace(text))

	switch {
	case botIdentityPattern.MatchString(text):
		return Fact{
			Kind: "identity_bot",
			Text: fmt.Sprintf("My name is %s. I am a %s created by %s.",
				m.identity.BotName, m.identity.BotRole, m.identity.UserName),
		}, true

	case userIdentityPattern.MatchString(text):
		return Fact{
			Kind: "identity_user",
			Text: fmt.Sprintf("You are %s, my %s.",
				m.identity.UserName, m.identity.UserRole),
		}, true

	case creatorPattern.MatchString(text):
		return Fact{
			Kind: "creator_fact",
			Text: fmt.Sprintf("I was built by %s.", m.identity.UserName),
		}, true
	}

	return Fact{}, false
}
