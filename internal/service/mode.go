package service

import (
	"strings"

	"github.com/samber/lo"

	"genie/internal/model"
)

// modeRule binds a mode to the keywords that select it
type modeRule struct {
	mode     model.Mode
	keywords []string
}

// modeRules is evaluated in order; the first rule with a matching keyword wins.
var modeRules = []modeRule{
	{mode: model.ModeAnalytical, keywords: []string{"roi", "yield", "portfolio", "invest"}},
	{mode: model.ModeProject, keywords: []string{"build", "construction", "mall", "bungalow", "cost to"}},
	{mode: model.ModeDiscovery, keywords: []string{"search", "find", "buy", "rent"}},
}

var modeAnnouncements = map[model.Mode]string{
	model.ModeDiscovery:  "Switching to Discovery mode. I'll help you find homes and land to buy or rent.",
	model.ModeTrip:       "Switching to Trip mode. I'll help you plan viewings and short stays.",
	model.ModeAnalytical: "Switching to Analytical mode. I'll focus on ROI, rental yield and long-term value.",
	model.ModeProject:    "Switching to Project mode. I'll focus on construction scope, costs and timelines.",
}

// SelectMode classifies an utterance into a mode, keeping current when no keyword set matches
func SelectMode(utterance string, current model.Mode) model.Mode {
	lower := strings.ToLower(utterance)
	for _, rule := range modeRules {
		if containsAny(lower, rule.keywords) {
			return rule.mode
		}
	}
	return current
}

// ModeAnnouncement is the message shown when the conversation switches into mode
func ModeAnnouncement(mode model.Mode) string {
	return modeAnnouncements[mode]
}

// containsAny reports whether text contains any of the substrings. text must already be lower-cased.
func containsAny(text string, substrings []string) bool {
	return lo.SomeBy(substrings, func(s string) bool {
		return strings.Contains(text, s)
	})
}
