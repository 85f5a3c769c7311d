package persona

// User-facing strings for failure paths. These are the only texts a caller
// ever sees when the completion provider misbehaves; the underlying cause
// stays in the logs.

var fallbackText = map[Language]string{
	LangEnglish: "I could not provide a fortune reading at this moment.",
	LangTurkish: "Şu anda fal bakamıyorum.",
}

var imageFallbackText = map[Language]string{
	LangEnglish: "I could not analyze this image.",
	LangTurkish: "Bu görseli şu anda analiz edemiyorum.",
}

var rateLimitText = map[Language]string{
	LangEnglish: "API rate limit exceeded. Please try again later.",
	LangTurkish: "API kullanım limiti aşıldı. Lütfen daha sonra tekrar deneyin.",
}

var failureText = map[Language]string{
	LangEnglish: "Failed to get fortune telling",
	LangTurkish: "Fal okuma başarısız oldu",
}

var imageFailureText = map[Language]string{
	LangEnglish: "Failed to analyze image",
	LangTurkish: "Görsel analizi başarısız oldu",
}

func forLanguage(table map[Language]string, lang Language) string {
	if text, ok := table[lang]; ok {
		return text
	}
	return table[LangEnglish]
}

// FallbackText substitutes for an empty completion.
func FallbackText(lang Language) string { return forLanguage(fallbackText, lang) }

// ImageFallbackText substitutes for an empty image-analysis completion.
func ImageFallbackText(lang Language) string { return forLanguage(imageFallbackText, lang) }

// RateLimitText is returned when the provider reports rate exhaustion.
func RateLimitText(lang Language) string { return forLanguage(rateLimitText, lang) }

// FailureText is the generic fortune failure message.
func FailureText(lang Language) string { return forLanguage(failureText, lang) }

// ImageFailureText is the generic image-analysis failure message.
func ImageFailureText(lang Language) string { return forLanguage(imageFailureText, lang) }
