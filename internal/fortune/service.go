// Package fortune implements the reading flow: session-scoped conversation
// with the completion provider in the Madame Mystique persona, plus the
// card-style post-processing for tarot readings.
package fortune

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	mysterrors "mystique/internal/errors"
	"mystique/internal/logging"
	"mystique/internal/observability"
	"mystique/internal/persona"
	"mystique/internal/ports"
	"mystique/internal/session"
	"mystique/internal/tarot"
	"mystique/internal/token"
)

const (
	// Generation parameters tuned for theatrical, non-repetitive readings.
	defaultTemperature      = 0.7
	defaultPresencePenalty  = 0.6
	defaultFrequencyPenalty = 0.6
	defaultMaxTokens        = 500

	defaultImageCacheSize = 128
)

// Options configures the Service.
type Options struct {
	Provider       ports.LLMClient
	Store          *session.Store
	Metrics        *observability.MetricsCollector
	Logger         logging.Logger
	MaxTokens      int
	ImageCacheSize int
}

// Service orchestrates fortune readings and image analyses.
type Service struct {
	provider   ports.LLMClient
	store      *session.Store
	metrics    *observability.MetricsCollector
	logger     logging.Logger
	maxTokens  int
	imageCache *lru.Cache[string, string]
}

// Request is one chat turn.
type Request struct {
	SessionID string
	Message   string
	Mode      persona.Mode
	Language  persona.Language
	Spread    tarot.SpreadType
	MaxTokens int
}

// Reading is the produced fortune. Text is what the caller shows; the
// session history keeps the provider's raw wording.
type Reading struct {
	Text      string
	Formatted bool
	Usage     ports.TokenUsage
}

// NewService validates options and builds the service.
func NewService(opts Options) (*Service, error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("fortune: provider is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("fortune: session store is required")
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.ImageCacheSize <= 0 {
		opts.ImageCacheSize = defaultImageCacheSize
	}

	cache, err := lru.New[string, string](opts.ImageCacheSize)
	if err != nil {
		return nil, fmt.Errorf("fortune: image cache: %w", err)
	}

	return &Service{
		provider:   opts.Provider,
		store:      opts.Store,
		metrics:    opts.Metrics,
		logger:     logging.OrNop(opts.Logger),
		maxTokens:  opts.MaxTokens,
		imageCache: cache,
	}, nil
}

// Tell runs one full reading turn: record the user's question, consult the
// provider with the session's history, record the answer, and reshape tarot
// output into the card template. Turns for the same session are serialized;
// concurrent sessions proceed independently.
//
// On provider failure the user's question stays in history and no assistant
// entry is written, so a retry of the same question reads naturally.
func (s *Service) Tell(ctx context.Context, req Request) (*Reading, error) {
	mode, lang := normalize(req.Mode, req.Language)

	unlock := s.store.LockTurn(req.SessionID)
	defer unlock()

	modeID := conversationID(mode, lang)
	_, existed := s.store.Get(req.SessionID)
	s.store.GetOrCreate(req.SessionID, modeID, func() string {
		return persona.ConstructSystemPrompt(mode, lang, false)
	})
	if !existed {
		s.metrics.IncrementActiveSessions(ctx)
	}

	s.store.Append(req.SessionID, ports.RoleUser, req.Message)
	messages, ok := s.store.Messages(req.SessionID)
	if !ok {
		return nil, fmt.Errorf("fortune: session %s vanished mid-turn", req.SessionID)
	}

	s.logger.Debug("session %s turn: mode=%s lang=%s history=%d prompt_tokens~%d",
		req.SessionID, mode, lang, len(messages), token.CountMessages(messages))

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.maxTokens
	}

	resp, err := s.complete(ctx, ports.CompletionRequest{
		Messages:         messages,
		Temperature:      defaultTemperature,
		MaxTokens:        maxTokens,
		PresencePenalty:  defaultPresencePenalty,
		FrequencyPenalty: defaultFrequencyPenalty,
	})
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		s.logger.Warn("session %s: empty completion, substituting fallback", req.SessionID)
		content = persona.FallbackText(lang)
	}
	s.store.Append(req.SessionID, ports.RoleAssistant, content)

	text := content
	formatted := false
	if mode == persona.ModeTarot && tarot.IsCardStyleReading(content, lang) {
		spread := tarot.SpreadByType(req.Spread)
		text = tarot.FormatReading(content, spread, lang)
		formatted = true
		s.metrics.RecordFormattedReading(ctx, string(spread.Type))
	}

	return &Reading{Text: text, Formatted: formatted, Usage: resp.Usage}, nil
}

func (s *Service) complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	start := time.Now()
	resp, err := s.provider.Complete(ctx, req)
	elapsed := time.Since(start)

	status := "ok"
	usage := ports.TokenUsage{}
	switch {
	case mysterrors.IsRateLimited(err):
		status = "rate_limited"
	case err != nil:
		status = "error"
	default:
		usage = resp.Usage
	}
	s.metrics.RecordProviderRequest(ctx, s.provider.Model(), status, elapsed,
		usage.PromptTokens, usage.CompletionTokens)

	if err != nil {
		s.logger.Error("provider call failed after %v: %v", elapsed, err)
		return nil, err
	}
	return resp, nil
}

func normalize(mode persona.Mode, lang persona.Language) (persona.Mode, persona.Language) {
	if !persona.ValidMode(mode) {
		mode = persona.ModeCrystal
	}
	if !persona.ValidLanguage(lang) {
		lang = persona.LangEnglish
	}
	return mode, lang
}

// conversationID ties a session's history to its prompt. Switching mode or
// language rebuilds the system prompt, so either switch starts the
// conversation over.
func conversationID(mode persona.Mode, lang persona.Language) string {
	return string(mode) + "/" + string(lang)
}
