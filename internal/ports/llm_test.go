package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextMessageCarriesPlainContent(t *testing.T) {
	t.Parallel()

	msg := TextMessage(RoleSystem, "you see all")
	assert.Equal(t, RoleSystem, msg.Role)
	assert.Equal(t, "you see all", msg.Content)
	assert.Empty(t, msg.Parts)
}

func TestImageMessagePairsPromptWithImage(t *testing.T) {
	t.Parallel()

	msg := ImageMessage("read this palm", "https://example.com/palm.png")
	assert.Equal(t, RoleUser, msg.Role)
	assert.Empty(t, msg.Content, "multimodal messages carry Parts, not Content")

	require.Len(t, msg.Parts, 2)
	assert.Equal(t, "text", msg.Parts[0].Type)
	assert.Equal(t, "read this palm", msg.Parts[0].Text)
	assert.Equal(t, "image_url", msg.Parts[1].Type)
	assert.Equal(t, "https://example.com/palm.png", msg.Parts[1].ImageURL)
}
