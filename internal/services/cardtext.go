package services

import (
	"strings"
)

// defaultKeywordThreshold is the minimum number of Pokemon keywords an OCR
// result must contain to be accepted as a card. A single hit is enough:
// photos of physical cards routinely lose most text to glare and blur.
const defaultKeywordThreshold = 1

// pokemonKeywords is the fixed vocabulary used to decide whether OCR text
// came from a Pokemon card.
var pokemonKeywords = []string{
	"hp",
	"pokemon",
	"pokémon",
	"trainer",
	"energy",
	"attack",
	"weakness",
	"resistance",
	"retreat",
	"evolves",
	"stage",
	"basic",
}

// attackKeywords flag lines that describe an attack or effect.
var attackKeywords = []string{
	"attack",
	"damage",
	"effect",
}

// PokemonInfo is the structured best-effort reading of a card's OCR text.
// There is no confidence score; misreads are expected and surface as odd
// names rather than errors.
type PokemonInfo struct {
	Name    string   `json:"name"`
	HP      string   `json:"hp,omitempty"`
	Attacks []string `json:"attacks,omitempty"`
	Other   []string `json:"other,omitempty"`
}

// CardTextClassifier applies keyword heuristics to recognized text lines.
type CardTextClassifier struct {
	threshold int
}

// NewCardTextClassifier creates a classifier. threshold <= 0 uses the
// default minimum keyword count.
func NewCardTextClassifier(threshold int) *CardTextClassifier {
	if threshold <= 0 {
		threshold = defaultKeywordThreshold
	}
	return &CardTextClassifier{threshold: threshold}
}

// IsPokemonCard reports whether the recognized lines contain at least the
// threshold number of Pokemon keyword hits.
func (c *CardTextClassifier) IsPokemonCard(lines []string) bool {
	hits := 0
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, kw := range pokemonKeywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits >= c.threshold {
			return true
		}
	}
	return hits >= c.threshold
}

// ExtractInfo scans the recognized lines and assigns each to a field: the
// first HP-bearing line's prefix becomes the HP, attack/damage/effect
// lines become attacks, the first remaining non-empty line becomes the
// display name, and everything else is auxiliary text.
func (c *CardTextClassifier) ExtractInfo(lines []string) PokemonInfo {
	var info PokemonInfo

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		if info.HP == "" && strings.Contains(lower, "hp") {
			idx := strings.Index(lower, "hp")
			if hp := strings.TrimSpace(line[:idx]); hp != "" {
				info.HP = hp
				continue
			}
		}

		if containsAny(lower, attackKeywords) {
			info.Attacks = append(info.Attacks, line)
			continue
		}

		if info.Name == "" {
			info.Name = line
			continue
		}

		info.Other = append(info.Other, line)
	}

	return info
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
