package model

import (
	"fmt"
	"math"
	"strconv"
)

// Property represents a catalog record
type Property struct {
	ID       string       `json:"id" db:"id"`
	Title    string       `json:"title" db:"title"`
	Location string       `json:"location" db:"location"`
	Type     PropertyType `json:"type" db:"property_type"`
	Image    string       `json:"image" db:"image"`
	Price    float64      `json:"price" db:"price"` // KES
}

// PriceLabel renders the price in the short form used in chat cards, e.g. "KES 8.5M"
func (p Property) PriceLabel() string {
	switch {
	case p.Price >= 1_000_000:
		return "KES " + trimFloat(p.Price/1_000_000) + "M"
	case p.Price >= 1_000:
		return "KES " + trimFloat(p.Price/1_000) + "K"
	default:
		return fmt.Sprintf("KES %.0f", p.Price)
	}
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}

// PropertyMatch is a property shown in the transcript together with the reasons it matched
type PropertyMatch struct {
	Property
	PriceLabel     string   `json:"price_label"`
	MatchedReasons []string `json:"matched_reasons"`
}
