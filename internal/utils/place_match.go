package utils

import (
	"strings"
	"unicode"
)

// placeAliases maps shorthand people actually type to canonical place names
var placeAliases = map[string]string{
	"nrb":        "Nairobi",
	"nbi":        "Nairobi",
	"naks":       "Nakuru",
	"nax":        "Naivasha",
	"sec 58":     "Section 58",
	"section58":  "Section 58",
	"msa":        "Mombasa",
	"kisumu cbd": "Kisumu",
	"egerton":    "Njoro",
}

// NormalizePlace maps an alias to its canonical place name
func NormalizePlace(term string) (string, bool) {
	canonical, ok := placeAliases[strings.ToLower(strings.TrimSpace(term))]
	return canonical, ok
}

// IndexWord returns the byte index of the first case-insensitive, whole-word
// occurrence of term in text, or -1.
func IndexWord(text, term string) int {
	textLower := strings.ToLower(text)
	termLower := strings.ToLower(strings.TrimSpace(term))
	if termLower == "" {
		return -1
	}

	offset := 0
	for {
		i := strings.Index(textLower[offset:], termLower)
		if i < 0 {
			return -1
		}
		start := offset + i
		end := start + len(termLower)
		if isBoundary(textLower, start-1) && isBoundary(textLower, end) {
			return start
		}
		offset = start + 1
	}
}

func isBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	r := rune(s[i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// FindEarliestPlace returns the canonical name of the place mentioned first in
// text, checking both the given place names and the alias table. On a tie the
// longer term wins, so "Section 58" beats a shorter overlapping name.
func FindEarliestPlace(text string, places []string) (string, bool) {
	bestIndex := -1
	bestLen := 0
	best := ""

	consider := func(term, canonical string) {
		i := IndexWord(text, term)
		if i < 0 {
			return
		}
		if bestIndex < 0 || i < bestIndex || (i == bestIndex && len(term) > bestLen) {
			bestIndex = i
			bestLen = len(term)
			best = canonical
		}
	}

	for _, place := range places {
		consider(place, place)
	}
	for alias, canonical := range placeAliases {
		consider(alias, canonical)
	}

	return best, bestIndex >= 0
}
