package tarot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mystique/internal/persona"
)

func TestIsCardStyleReading(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		lang persona.Language
		want bool
	}{
		{
			name: "card label",
			text: "Card: The Tower\nThis signifies upheaval.",
			lang: persona.LangEnglish,
			want: true,
		},
		{
			name: "bolded message marker",
			text: "**The Message:** The Fool represents new beginnings.",
			lang: persona.LangEnglish,
			want: true,
		},
		{
			name: "narrative with action and drawing phrase",
			text: "*I draw a card and place it on the table* The cards reveal a journey ahead.",
			lang: persona.LangEnglish,
			want: true,
		},
		{
			name: "plain prose",
			text: "The weather today is sunny.",
			lang: persona.LangEnglish,
			want: false,
		},
		{
			name: "drawing phrase without mystical punctuation",
			text: "I draw a conclusion from your words.",
			lang: persona.LangEnglish,
			want: false,
		},
		{
			name: "turkish card label",
			text: "Kart: Kule\nBu büyük bir değişimi gösterir.",
			lang: persona.LangTurkish,
			want: true,
		},
		{
			name: "turkish marker",
			text: "**Mesaj:** Güneş kartı mutluluk getiriyor.",
			lang: persona.LangTurkish,
			want: true,
		},
		{
			name: "empty text",
			text: "   ",
			lang: persona.LangEnglish,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsCardStyleReading(tt.text, tt.lang))
		})
	}
}

func TestExtractCardName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		lang persona.Language
		want string
	}{
		{
			name: "message marker wins",
			text: "**The Message:** The Fool represents new beginnings.",
			lang: persona.LangEnglish,
			want: "The Fool represents new beginnings",
		},
		{
			name: "card label fallback",
			text: "Card: The Tower\nThis signifies upheaval.",
			lang: persona.LangEnglish,
			want: "The Tower",
		},
		{
			name: "bolded card label",
			text: "**Card:** The Sun shines for you.",
			lang: persona.LangEnglish,
			want: "The Sun shines for you",
		},
		{
			name: "no markers",
			text: "The spirits are silent tonight.",
			lang: persona.LangEnglish,
			want: "",
		},
		{
			name: "turkish label",
			text: "Kart: Ay\nGizem seni bekliyor.",
			lang: persona.LangTurkish,
			want: "Ay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExtractCardName(tt.text, tt.lang))
		})
	}
}

func TestFormatReadingSingleCard(t *testing.T) {
	t.Parallel()

	spread := SpreadByType(SpreadSingleCard)
	require.Len(t, spread.Positions, 1)

	got := FormatReading(
		"**Card:** The Sun\n**The Message:** Joy is coming.",
		spread, persona.LangEnglish,
	)
	assert.Equal(t, "Card: The Sun\n**The Message:** Joy is coming.", got)
}

func TestFormatReadingKeepsNarrative(t *testing.T) {
	t.Parallel()

	spread := SpreadByType(SpreadSingleCard)
	got := FormatReading(
		"*I shuffle the deck slowly*\n**Card:** The Moon\n**The Message:** Trust your intuition.",
		spread, persona.LangEnglish,
	)
	assert.Equal(t,
		"*I shuffle the deck slowly*\nCard: The Moon\n**The Message:** Trust your intuition.",
		got)
}

func TestFormatReadingWithoutMarkers(t *testing.T) {
	t.Parallel()

	spread := SpreadByType(SpreadSingleCard)
	got := FormatReading("The spirits whisper of change.", spread, persona.LangEnglish)
	assert.Equal(t, "**The Message:** The spirits whisper of change.", got)
}

func TestFormatReadingMultiPositionPassthrough(t *testing.T) {
	t.Parallel()

	spread := SpreadByType(SpreadThreeCard)
	text := "**Past:** The Hermit.\n**Present:** The Star.\n**Future:** The World."
	assert.Equal(t, text, FormatReading(text, spread, persona.LangEnglish))
}

func TestFormatReadingTurkish(t *testing.T) {
	t.Parallel()

	spread := SpreadByType(SpreadSingleCard)
	got := FormatReading(
		"**Kart:** Güneş\n**Mesaj:** Mutluluk yolda.",
		spread, persona.LangTurkish,
	)
	assert.Equal(t, "Kart: Güneş\n**The Message:** Mutluluk yolda.", got)
}

func TestCardLabelLocalized(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Card", CardLabel(persona.LangEnglish))
	assert.Equal(t, "Kart", CardLabel(persona.LangTurkish))
	assert.Equal(t, "Card", CardLabel("xx"), "unknown language falls back to English")
}

func TestSpreadByTypeUnknownFallsBack(t *testing.T) {
	t.Parallel()

	spread := SpreadByType("no_such_spread")
	assert.Equal(t, SpreadSingleCard, spread.Type)
	assert.False(t, KnownSpread("no_such_spread"))
	assert.True(t, KnownSpread(SpreadCelticCross))
}
