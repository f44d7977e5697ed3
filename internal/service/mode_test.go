package service

import (
	"testing"

	"genie/internal/model"
)

func TestSelectMode(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		current   model.Mode
		want      model.Mode
	}{
		{name: "Analytical keyword", utterance: "What ROI can I expect?", current: model.ModeDiscovery, want: model.ModeAnalytical},
		{name: "Project keyword", utterance: "cost to build a mall", current: model.ModeDiscovery, want: model.ModeProject},
		{name: "Discovery keyword", utterance: "find me a home", current: model.ModeProject, want: model.ModeDiscovery},
		{name: "Analytical beats project", utterance: "invest in a construction project", current: model.ModeDiscovery, want: model.ModeAnalytical},
		{name: "Project beats discovery", utterance: "buy land to build on", current: model.ModeAnalytical, want: model.ModeProject},
		{name: "No keyword keeps current", utterance: "hello there", current: model.ModeTrip, want: model.ModeTrip},
		{name: "Case insensitive", utterance: "PORTFOLIO review", current: model.ModeDiscovery, want: model.ModeAnalytical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectMode(tt.utterance, tt.current)
			if got != tt.want {
				t.Errorf("SelectMode(%q, %s) = %s, want %s", tt.utterance, tt.current, got, tt.want)
			}

			// selecting again from the result must not move
			if again := SelectMode(tt.utterance, got); again != got {
				t.Errorf("SelectMode is not idempotent for %q: %s then %s", tt.utterance, got, again)
			}
		})
	}
}

func TestModeAnnouncement(t *testing.T) {
	for _, mode := range []model.Mode{model.ModeDiscovery, model.ModeTrip, model.ModeAnalytical, model.ModeProject} {
		if ModeAnnouncement(mode) == "" {
			t.Errorf("missing announcement for %s", mode)
		}
	}
}
