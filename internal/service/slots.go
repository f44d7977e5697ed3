package service

import (
	"regexp"
	"strings"

	"genie/internal/model"
)

var budgetPattern = regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*(?:million|thousand|m|k)\b`)

var (
	buyKeywords  = []string{"buy", "sale"}
	rentKeywords = []string{"rent", "lease"}
	landKeywords = []string{"land", "plot"}
	homeKeywords = []string{"house", "apartment", "mall", "bungalow"}
)

// SlotExtractor pulls location, intent, property type and budget out of free text
type SlotExtractor struct {
	detector        LocationDetector
	defaultLocation string
}

// NewSlotExtractor creates a slot extractor. defaultLocation is used when no
// location has ever been detected.
func NewSlotExtractor(detector LocationDetector, defaultLocation string) *SlotExtractor {
	return &SlotExtractor{
		detector:        detector,
		defaultLocation: defaultLocation,
	}
}

// Extract merges the slots found in utterance over prior. Slots that are not
// detected keep their prior value; location falls back to the default when it
// was never set.
func (e *SlotExtractor) Extract(utterance string, prior model.ConversationState) model.ConversationState {
	lower := strings.ToLower(utterance)
	next := prior

	if place, ok := e.detectLocation(utterance); ok {
		next.Location = place.Name
	} else if next.Location == "" {
		next.Location = e.defaultLocation
	}

	switch {
	case containsAny(lower, buyKeywords):
		next.Intent = model.IntentBuy
	case containsAny(lower, rentKeywords):
		next.Intent = model.IntentRent
	}

	switch {
	case containsAny(lower, landKeywords):
		next.PropertyType = model.PropertyTypeLand
	case containsAny(lower, homeKeywords):
		next.PropertyType = model.PropertyTypeHome
	}

	if budget := budgetPattern.FindString(utterance); budget != "" {
		next.Budget = budget
	}

	return next
}

func (e *SlotExtractor) detectLocation(text string) (Place, bool) {
	if e.detector == nil {
		return Place{}, false
	}
	place, ok := e.detector.Detect(text)
	if !ok || place.Name == "" {
		return Place{}, false
	}
	return place, true
}
