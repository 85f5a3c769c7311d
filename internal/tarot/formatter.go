package tarot

import (
	"fmt"
	"strings"

	"mystique/internal/persona"
)

// detectionRule is one predicate in the ordered card-style detection table.
// Rules are evaluated in order with short-circuit semantics so each can be
// tested on its own.
type detectionRule struct {
	name  string
	match func(text, lowered string, vocab *vocabulary) bool
}

var detectionRules = []detectionRule{
	{
		// "Card: The Tower" style label followed by a name.
		name: "card-label",
		match: func(text, _ string, vocab *vocabulary) bool {
			return vocab.cardLabelRe.MatchString(text)
		},
	},
	{
		// Bolded "**The Message:**" marker.
		name: "message-marker",
		match: func(text, _ string, vocab *vocabulary) bool {
			return vocab.messageSplitRe.MatchString(text)
		},
	},
	{
		// Narrative fallback: a drawing phrase plus card-ish emphasis plus
		// mystical punctuation. All three legs must hold.
		name: "narrative",
		match: func(text, lowered string, vocab *vocabulary) bool {
			if !containsAny(lowered, vocab.phraseIndicators) {
				return false
			}
			emphasis := doubleAsteriskRe.MatchString(text) ||
				actionRe.MatchString(text) ||
				containsAny(lowered, vocab.domainTerms)
			if !emphasis {
				return false
			}
			return hasMysticalPunctuation(text)
		},
	},
}

// IsCardStyleReading reports whether generated text looks like a tarot card
// reading in the given language.
func IsCardStyleReading(text string, lang persona.Language) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	vocab := vocabularyFor(lang)
	lowered := strings.ToLower(text)
	for _, rule := range detectionRules {
		if rule.match(text, lowered, vocab) {
			return true
		}
	}
	return false
}

// ExtractCardName pulls the card name out of a reading: first the text after
// a bolded message marker up to the next period or newline, then the text
// after a card label up to sentence punctuation or newline. Returns "" when
// neither marker is present.
func ExtractCardName(text string, lang persona.Language) string {
	vocab := vocabularyFor(lang)

	if m := vocab.messageMarkerRe.FindStringSubmatch(text); m != nil {
		return cleanCardName(m[1])
	}
	if m := vocab.cardLabelRe.FindStringSubmatch(text); m != nil {
		return cleanCardName(m[1])
	}
	return ""
}

// FormatReading normalizes a single-card reading into the fixed display
// template:
//
//	<action narrative>
//	<card label>: <card name>
//	**<position name>:** <reading>
//
// Multi-position spreads pass through unchanged; their structure is produced
// by the presentation layer splitting on bolded position names. This
// function never fails: a missing card name drops that line and a missing
// message marker treats the whole text as the reading segment.
func FormatReading(text string, spread Spread, lang persona.Language) string {
	if len(spread.Positions) != 1 {
		return text
	}

	vocab := vocabularyFor(lang)
	position := spread.Positions[0]

	action := ""
	reading := strings.TrimSpace(text)
	if locs := vocab.messageSplitRe.FindAllStringIndex(text, -1); len(locs) > 0 {
		action = strings.TrimSpace(text[:locs[0][0]])
		reading = strings.TrimSpace(text[locs[len(locs)-1][1]:])
	}

	// The card name lives in the narrative when a marker split happened,
	// otherwise anywhere in the text.
	nameSource := text
	if action != "" {
		nameSource = action
	}
	cardName := ExtractCardName(nameSource, lang)

	// Drop the raw label line from the narrative; the formatted card line
	// below replaces it.
	if action != "" {
		action = strings.TrimSpace(vocab.cardLabelRe.ReplaceAllString(action, ""))
	}

	var b strings.Builder
	if action != "" {
		b.WriteString(action)
		b.WriteString("\n")
	}
	if cardName != "" {
		b.WriteString(fmt.Sprintf("%s: %s\n", CardLabel(lang), cardName))
	}
	b.WriteString(fmt.Sprintf("**%s:** %s", position.Name, reading))
	return b.String()
}

func cleanCardName(raw string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), "*"))
}

func containsAny(lowered string, needles []string) bool {
	for _, needle := range needles {
		if needle != "" && strings.Contains(lowered, needle) {
			return true
		}
	}
	return false
}

// hasMysticalPunctuation checks for the stage-direction cues the persona
// writes with: asterisked actions, ellipses, or parenthetical asides.
func hasMysticalPunctuation(text string) bool {
	return actionRe.MatchString(text) ||
		strings.Contains(text, "...") ||
		strings.Contains(text, "…") ||
		parentheticalRe.MatchString(text)
}
