package service

import (
	"genie/internal/utils"
)

// DefaultPlaces is the gazetteer used when no custom place list is supplied
var DefaultPlaces = []string{
	"Nakuru", "Njoro", "Naivasha", "Molo", "Gilgil", "Lanet", "Milimani",
	"Section 58", "Kiamunyi", "Bahati", "Rongai", "Subukia", "Nyahururu",
	"Nairobi", "Kilimani", "Westlands", "Karen", "Kitengela", "Ruiru", "Thika",
	"Mombasa", "Kisumu", "Eldoret", "Kericho",
}

// Place is a detected location
type Place struct {
	Name string
}

// LocationDetector maps free text to a known place name
type LocationDetector interface {
	Detect(text string) (Place, bool)
}

// KeywordLocationDetector detects places by whole-word gazetteer and alias lookup
type KeywordLocationDetector struct {
	places []string
}

// NewKeywordLocationDetector creates a detector over the given places, or DefaultPlaces when none are given
func NewKeywordLocationDetector(places ...string) *KeywordLocationDetector {
	if len(places) == 0 {
		places = DefaultPlaces
	}
	return &KeywordLocationDetector{places: places}
}

// Detect returns the place mentioned earliest in text
func (d *KeywordLocationDetector) Detect(text string) (Place, bool) {
	name, ok := utils.FindEarliestPlace(text, d.places)
	if !ok {
		return Place{}, false
	}
	return Place{Name: name}, true
}
