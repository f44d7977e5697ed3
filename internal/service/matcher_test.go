package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"genie/internal/model"
)

func TestParseBudget(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{raw: "10M", want: 10_000_000, wantOK: true},
		{raw: "2.5 million", want: 2_500_000, wantOK: true},
		{raw: "850k", want: 850_000, wantOK: true},
		{raw: "40 Thousand", want: 40_000, wantOK: true},
		{raw: "", wantOK: false},
		{raw: "cheap", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseBudget(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestMatchProperty(t *testing.T) {
	p := model.Property{ID: "p-001", Location: "Njoro, Nakuru", Type: model.PropertyTypeHome, Price: 8_500_000}

	tests := []struct {
		name  string
		state model.ConversationState
		want  []string
	}{
		{name: "Location and type within budget", state: model.ConversationState{Location: "njoro", PropertyType: model.PropertyTypeHome, Budget: "9M"}, want: []string{ReasonLocationMatch, ReasonTypeMatch, ReasonWithinBudget}},
		{name: "Over budget", state: model.ConversationState{Location: "Nakuru", Budget: "5M"}, want: []string{ReasonLocationMatch, ReasonOverBudget}},
		{name: "Nothing set", state: model.ConversationState{}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchProperty(p, tt.state)
			assert.Equal(t, tt.want, got.MatchedReasons)
			assert.Equal(t, "KES 8.5M", got.PriceLabel)
			assert.Equal(t, p, got.Property)
		})
	}
}
