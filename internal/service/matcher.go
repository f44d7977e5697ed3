package service

import (
	"regexp"
	"strconv"
	"strings"

	"genie/internal/model"
)

// Match reason constants
const (
	ReasonLocationMatch = "Location match"
	ReasonTypeMatch     = "Property type match"
	ReasonWithinBudget  = "Within budget"
	ReasonOverBudget    = "Above your budget"
)

var budgetPartsPattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*(million|thousand|m|k)$`)

// ParseBudget converts a raw budget token such as "10M" or "850 thousand" to KES
func ParseBudget(raw string) (float64, bool) {
	parts := budgetPartsPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if len(parts) != 3 {
		return 0, false
	}
	value, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToLower(parts[2]) {
	case "m", "million":
		return value * 1_000_000, true
	default:
		return value * 1_000, true
	}
}

// matchProperty annotates a catalog item with the reasons it was shown. Order is never changed.
func matchProperty(p model.Property, state model.ConversationState) model.PropertyMatch {
	reasons := []string{}

	if state.Location != "" && strings.Contains(strings.ToLower(p.Location), strings.ToLower(state.Location)) {
		reasons = append(reasons, ReasonLocationMatch)
	}

	if state.PropertyType != "" && p.Type == state.PropertyType {
		reasons = append(reasons, ReasonTypeMatch)
	}

	if budget, ok := ParseBudget(state.Budget); ok && p.Price > 0 {
		if p.Price <= budget {
			reasons = append(reasons, ReasonWithinBudget)
		} else {
			reasons = append(reasons, ReasonOverBudget)
		}
	}

	return model.PropertyMatch{
		Property:       p,
		PriceLabel:     p.PriceLabel(),
		MatchedReasons: reasons,
	}
}
