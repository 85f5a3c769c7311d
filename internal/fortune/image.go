package fortune

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"mystique/internal/persona"
	"mystique/internal/ports"
)

// ImageRequest asks for a mystical interpretation of one image. ImageURL may
// be an https URL or a data URL.
type ImageRequest struct {
	ImageURL  string
	Mode      persona.Mode
	Language  persona.Language
	MaxTokens int
}

// AnalyzeImage interprets an image in the persona's voice. Analyses are
// stateless (no session history) and cached by image, mode, and language so
// repeated uploads of the same picture do not burn provider quota.
func (s *Service) AnalyzeImage(ctx context.Context, req ImageRequest) (string, error) {
	mode, lang := normalize(req.Mode, req.Language)

	key := imageCacheKey(req.ImageURL, mode, lang)
	if cached, ok := s.imageCache.Get(key); ok {
		s.metrics.RecordImageCacheLookup(ctx, true)
		s.logger.Debug("image analysis cache hit for mode=%s lang=%s", mode, lang)
		return cached, nil
	}
	s.metrics.RecordImageCacheLookup(ctx, false)

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.maxTokens
	}

	userMsg := ports.ImageMessage(persona.ImageAnalysisPrompt(mode, lang), req.ImageURL)

	resp, err := s.complete(ctx, ports.CompletionRequest{
		Messages: []ports.Message{
			ports.TextMessage(ports.RoleSystem, persona.ConstructSystemPrompt(mode, lang, true)),
			userMsg,
		},
		Temperature:      defaultTemperature,
		MaxTokens:        maxTokens,
		PresencePenalty:  defaultPresencePenalty,
		FrequencyPenalty: defaultFrequencyPenalty,
	})
	if err != nil {
		return "", err
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		// Fallbacks are not cached; the next attempt should hit the provider.
		s.logger.Warn("empty image analysis, substituting fallback")
		return persona.ImageFallbackText(lang), nil
	}

	s.imageCache.Add(key, content)
	return content, nil
}

// imageCacheKey hashes the image payload so multi-megabyte data URLs do not
// sit in the cache keys.
func imageCacheKey(imageURL string, mode persona.Mode, lang persona.Language) string {
	sum := sha256.Sum256([]byte(imageURL))
	return hex.EncodeToString(sum[:]) + "/" + string(mode) + "/" + string(lang)
}
