// Package tarot holds the spread catalogue and the heuristics that detect
// and reshape card-style readings coming back from the completion provider.
package tarot

// SpreadType identifies a card layout.
type SpreadType string

const (
	SpreadSingleCard  SpreadType = "single_card"
	SpreadThreeCard   SpreadType = "three_card"
	SpreadCelticCross SpreadType = "celtic_cross"
	SpreadHorseshoe   SpreadType = "horseshoe"
	SpreadPentagram   SpreadType = "pentagram"
	SpreadTreeOfLife  SpreadType = "tree_of_life"
)

// Position is one slot in a spread.
type Position struct {
	Name        string
	Description string
}

// Spread is a read-only card layout definition.
type Spread struct {
	Type        SpreadType
	Name        string
	Description string
	CardCount   int
	Positions   []Position
}

var spreads = map[SpreadType]Spread{
	SpreadSingleCard: {
		Type:        SpreadSingleCard,
		Name:        "Single Card",
		Description: "A simple yet powerful spread for quick guidance or daily insight.",
		CardCount:   1,
		Positions: []Position{
			{Name: "The Message", Description: "The key message or energy for your question"},
		},
	},
	SpreadThreeCard: {
		Type:        SpreadThreeCard,
		Name:        "Three Card Spread",
		Description: "Past, Present, and Future spread for temporal insight.",
		CardCount:   3,
		Positions: []Position{
			{Name: "Past", Description: "Influences from the past"},
			{Name: "Present", Description: "Current situation"},
			{Name: "Future", Description: "Potential outcome"},
		},
	},
	SpreadCelticCross: {
		Type:        SpreadCelticCross,
		Name:        "Celtic Cross",
		Description: "A comprehensive spread for deep insight into complex situations.",
		CardCount:   10,
		Positions: []Position{
			{Name: "Present", Description: "Current situation"},
			{Name: "Challenge", Description: "What crosses you"},
			{Name: "Foundation", Description: "The basis of the situation"},
			{Name: "Recent Past", Description: "Recent influences"},
			{Name: "Potential", Description: "Best potential outcome"},
			{Name: "Near Future", Description: "Coming influences"},
			{Name: "Self", Description: "Your attitude"},
			{Name: "Environment", Description: "Others' influence"},
			{Name: "Hopes/Fears", Description: "Your inner emotions"},
			{Name: "Outcome", Description: "Final outcome"},
		},
	},
	SpreadHorseshoe: {
		Type:        SpreadHorseshoe,
		Name:        "Horseshoe Spread",
		Description: "A seven-card spread focusing on problem-solving.",
		CardCount:   7,
		Positions: []Position{
			{Name: "Past", Description: "Past influences"},
			{Name: "Present", Description: "Current situation"},
			{Name: "Hidden Influences", Description: "Unseen factors"},
			{Name: "Obstacles", Description: "Challenges to overcome"},
			{Name: "External Influences", Description: "Outside factors"},
			{Name: "Guidance", Description: "Advice to consider"},
			{Name: "Outcome", Description: "Likely outcome"},
		},
	},
	SpreadPentagram: {
		Type:        SpreadPentagram,
		Name:        "Pentagram Spread",
		Description: "A five-card spread representing the elements and spirit.",
		CardCount:   5,
		Positions: []Position{
			{Name: "Spirit", Description: "Higher guidance"},
			{Name: "Fire", Description: "Passion and energy"},
			{Name: "Water", Description: "Emotions and intuition"},
			{Name: "Air", Description: "Thoughts and communication"},
			{Name: "Earth", Description: "Physical and material aspects"},
		},
	},
	SpreadTreeOfLife: {
		Type:        SpreadTreeOfLife,
		Name:        "Tree of Life",
		Description: "A spiritual spread based on the Kabbalah Tree of Life.",
		CardCount:   10,
		Positions: []Position{
			{Name: "Crown", Description: "Higher purpose"},
			{Name: "Wisdom", Description: "Knowledge and understanding"},
			{Name: "Understanding", Description: "Comprehension and growth"},
			{Name: "Mercy", Description: "Grace and compassion"},
			{Name: "Severity", Description: "Discipline and boundaries"},
			{Name: "Beauty", Description: "Harmony and balance"},
			{Name: "Victory", Description: "Achievement and progress"},
			{Name: "Splendor", Description: "Intellect and communication"},
			{Name: "Foundation", Description: "Base and stability"},
			{Name: "Kingdom", Description: "Manifestation and reality"},
		},
	},
}

// SpreadByType looks up a spread definition. Unknown or empty types resolve
// to the single-card spread.
func SpreadByType(t SpreadType) Spread {
	if spread, ok := spreads[t]; ok {
		return spread
	}
	return spreads[SpreadSingleCard]
}

// KnownSpread reports whether t names a defined spread.
func KnownSpread(t SpreadType) bool {
	_, ok := spreads[t]
	return ok
}
