package fortune

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mysterrors "mystique/internal/errors"
	"mystique/internal/llm"
	"mystique/internal/persona"
	"mystique/internal/ports"
	"mystique/internal/session"
	"mystique/internal/tarot"
)

func newTestService(t *testing.T, mock *llm.MockClient) (*Service, *session.Store) {
	t.Helper()
	store := session.NewStore(session.Options{})
	svc, err := NewService(Options{Provider: mock, Store: store})
	require.NoError(t, err)
	return svc, store
}

func TestTellAppendsBothTurns(t *testing.T) {
	t.Parallel()

	mock := llm.NewMockClient("The mists part and reveal a bright road ahead.")
	svc, store := newTestService(t, mock)

	reading, err := svc.Tell(context.Background(), Request{
		SessionID: "s1",
		Message:   "Will my journey go well?",
		Mode:      persona.ModeCrystal,
		Language:  persona.LangEnglish,
	})
	require.NoError(t, err)
	assert.Equal(t, "The mists part and reveal a bright road ahead.", reading.Text)
	assert.False(t, reading.Formatted)

	messages, ok := store.Messages("s1")
	require.True(t, ok)
	require.Len(t, messages, 3)
	assert.Equal(t, ports.RoleSystem, messages[0].Role)
	assert.Equal(t, "Will my journey go well?", messages[1].Content)
	assert.Equal(t, ports.RoleAssistant, messages[2].Role)
}

func TestTellSendsHistoryAndTuning(t *testing.T) {
	t.Parallel()

	mock := llm.NewMockClient("First answer.", "Second answer.")
	svc, _ := newTestService(t, mock)

	ctx := context.Background()
	_, err := svc.Tell(ctx, Request{SessionID: "s1", Message: "first question"})
	require.NoError(t, err)
	_, err = svc.Tell(ctx, Request{SessionID: "s1", Message: "second question"})
	require.NoError(t, err)

	last, err := mock.LastCall()
	require.NoError(t, err)
	// system + first q + first a + second q
	require.Len(t, last.Messages, 4)
	assert.Equal(t, "First answer.", last.Messages[2].Content)
	assert.InDelta(t, 0.7, last.Temperature, 1e-9)
	assert.InDelta(t, 0.6, last.PresencePenalty, 1e-9)
	assert.InDelta(t, 0.6, last.FrequencyPenalty, 1e-9)
	assert.Equal(t, defaultMaxTokens, last.MaxTokens)
}

func TestTellEmptyCompletionFallsBack(t *testing.T) {
	t.Parallel()

	mock := llm.NewMockClient("   ")
	svc, store := newTestService(t, mock)

	reading, err := svc.Tell(context.Background(), Request{
		SessionID: "s1",
		Message:   "hello",
		Language:  persona.LangTurkish,
	})
	require.NoError(t, err)
	assert.Equal(t, persona.FallbackText(persona.LangTurkish), reading.Text)

	messages, ok := store.Messages("s1")
	require.True(t, ok)
	assert.Equal(t, persona.FallbackText(persona.LangTurkish), messages[2].Content)
}

func TestTellProviderFailureLeavesQuestion(t *testing.T) {
	t.Parallel()

	mock := llm.NewMockClient().FailWith(
		mysterrors.NewRateLimitedError(errors.New("quota exhausted"), 30))
	svc, store := newTestService(t, mock)

	_, err := svc.Tell(context.Background(), Request{SessionID: "s1", Message: "patience?"})
	require.Error(t, err)
	assert.True(t, mysterrors.IsRateLimited(err))

	// The question stays so a retry continues the conversation; no assistant
	// entry was written.
	messages, ok := store.Messages("s1")
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, ports.RoleUser, messages[1].Role)
}

func TestTellFormatsTarotReading(t *testing.T) {
	t.Parallel()

	raw := "**Card:** The Sun\n**The Message:** Joy is coming."
	mock := llm.NewMockClient(raw)
	svc, store := newTestService(t, mock)

	reading, err := svc.Tell(context.Background(), Request{
		SessionID: "s1",
		Message:   "draw a card for me",
		Mode:      persona.ModeTarot,
		Spread:    tarot.SpreadSingleCard,
	})
	require.NoError(t, err)
	assert.True(t, reading.Formatted)
	assert.Equal(t, "Card: The Sun\n**The Message:** Joy is coming.", reading.Text)

	// History keeps the provider's raw wording.
	messages, ok := store.Messages("s1")
	require.True(t, ok)
	assert.Equal(t, raw, messages[2].Content)
}

func TestTellNonTarotModeSkipsFormatting(t *testing.T) {
	t.Parallel()

	mock := llm.NewMockClient("**Card:** The Sun\n**The Message:** Joy is coming.")
	svc, _ := newTestService(t, mock)

	reading, err := svc.Tell(context.Background(), Request{
		SessionID: "s1",
		Message:   "what do you see?",
		Mode:      persona.ModeCrystal,
	})
	require.NoError(t, err)
	assert.False(t, reading.Formatted)
}

func TestTellModeChangeResetsHistory(t *testing.T) {
	t.Parallel()

	mock := llm.NewMockClient("Answer.")
	svc, store := newTestService(t, mock)

	ctx := context.Background()
	_, err := svc.Tell(ctx, Request{SessionID: "s1", Message: "q1", Mode: persona.ModeCrystal})
	require.NoError(t, err)
	_, err = svc.Tell(ctx, Request{SessionID: "s1", Message: "q2", Mode: persona.ModeTarot})
	require.NoError(t, err)

	messages, ok := store.Messages("s1")
	require.True(t, ok)
	// fresh system prompt + q2 + answer; crystal history discarded
	assert.Len(t, messages, 3)
}

func TestAnalyzeImageCaches(t *testing.T) {
	t.Parallel()

	mock := llm.NewMockClient("I see a winding path in the leaves.")
	svc, _ := newTestService(t, mock)

	ctx := context.Background()
	req := ImageRequest{ImageURL: "data:image/png;base64,AAAA", Mode: persona.ModeCoffee, Language: persona.LangEnglish}

	first, err := svc.AnalyzeImage(ctx, req)
	require.NoError(t, err)
	second, err := svc.AnalyzeImage(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, mock.Calls(), 1)

	last, err := mock.LastCall()
	require.NoError(t, err)
	require.Len(t, last.Messages, 2)
	require.Len(t, last.Messages[1].Parts, 2)
	assert.Equal(t, "image_url", last.Messages[1].Parts[1].Type)
}

func TestAnalyzeImageDistinctKeysMiss(t *testing.T) {
	t.Parallel()

	mock := llm.NewMockClient("A vision.")
	svc, _ := newTestService(t, mock)

	ctx := context.Background()
	_, err := svc.AnalyzeImage(ctx, ImageRequest{ImageURL: "u", Mode: persona.ModePalm, Language: persona.LangEnglish})
	require.NoError(t, err)
	_, err = svc.AnalyzeImage(ctx, ImageRequest{ImageURL: "u", Mode: persona.ModePalm, Language: persona.LangTurkish})
	require.NoError(t, err)

	assert.Len(t, mock.Calls(), 2)
}

func TestAnalyzeImageEmptyFallbackNotCached(t *testing.T) {
	t.Parallel()

	mock := llm.NewMockClient("")
	svc, _ := newTestService(t, mock)

	ctx := context.Background()
	req := ImageRequest{ImageURL: "u", Mode: persona.ModeCrystal, Language: persona.LangEnglish}

	text, err := svc.AnalyzeImage(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, persona.ImageFallbackText(persona.LangEnglish), text)

	_, err = svc.AnalyzeImage(ctx, req)
	require.NoError(t, err)
	assert.Len(t, mock.Calls(), 2)
}
