// Package token counts prompt tokens with tiktoken-go. The cl100k_base
// encoding is initialized once at startup; when that fails (no embedded
// vocabulary, exotic build) every counter degrades to a character heuristic
// instead of erroring.
package token

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"mystique/internal/ports"
)

var (
	once     sync.Once
	encoding *tiktoken.Tiktoken
)

func init() {
	once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})
}

// Count returns the token count of text under cl100k_base, or the
// EstimateFast heuristic when the encoding is unavailable.
func Count(text string) int {
	if encoding != nil {
		return len(encoding.Encode(text, nil, nil))
	}
	return EstimateFast(text)
}

// CountMessages totals the token cost of a prompt. Role strings and image
// parts are not counted; this is a logging aid, not a billing meter.
func CountMessages(messages []ports.Message) int {
	total := 0
	for _, msg := range messages {
		total += Count(msg.Content)
		for _, part := range msg.Parts {
			if part.Text != "" {
				total += Count(part.Text)
			}
		}
	}
	return total
}

// EstimateFast returns max(runes/4, word count), minimum 1 for non-empty
// text. Cheap enough for hot paths.
func EstimateFast(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	runes := len([]rune(trimmed))
	words := len(strings.Fields(trimmed))
	estimate := runes / 4
	if estimate < words {
		estimate = words
	}
	if estimate == 0 {
		estimate = 1
	}
	return estimate
}
