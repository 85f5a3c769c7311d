package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	mysterrors "mystique/internal/errors"
	"mystique/internal/fortune"
	"mystique/internal/persona"
	"mystique/internal/tarot"
)

// fortuneRequest is the POST /fortune payload. Mode, language, and spread
// type are optional; unknown values fall back to crystal ball readings in
// English with the single-card spread.
type fortuneRequest struct {
	Text       string `json:"text" binding:"required"`
	SessionID  string `json:"sessionId" binding:"required"`
	Mode       string `json:"mode"`
	Language   string `json:"language"`
	SpreadType string `json:"spreadType"`
	MaxTokens  int    `json:"maxTokens"`
}

type readingResponse struct {
	Response string `json:"response"`
}

type analyzeImageRequest struct {
	ImageURL  string `json:"imageUrl" binding:"required"`
	Mode      string `json:"mode"`
	Language  string `json:"language"`
	MaxTokens int    `json:"maxTokens"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleFortune(c *gin.Context) {
	var req fortuneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "text and sessionId are required"})
		return
	}

	lang := persona.Language(req.Language)
	reading, err := s.fortune.Tell(c.Request.Context(), fortune.Request{
		SessionID: req.SessionID,
		Message:   req.Text,
		Mode:      persona.Mode(req.Mode),
		Language:  lang,
		Spread:    tarot.SpreadType(req.SpreadType),
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		s.writeFortuneError(c, err, lang, persona.FailureText)
		return
	}

	c.JSON(http.StatusOK, readingResponse{Response: reading.Text})
}

func (s *Server) handleAnalyzeImage(c *gin.Context) {
	var req analyzeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "imageUrl is required"})
		return
	}

	lang := persona.Language(req.Language)
	analysis, err := s.fortune.AnalyzeImage(c.Request.Context(), fortune.ImageRequest{
		ImageURL:  req.ImageURL,
		Mode:      persona.Mode(req.Mode),
		Language:  lang,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		s.writeFortuneError(c, err, lang, persona.ImageFailureText)
		return
	}

	c.JSON(http.StatusOK, readingResponse{Response: analysis})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.store.Len(),
	})
}

// writeFortuneError maps provider failures to responses: 429 with the
// localized rate-limit message, 504 for cancelled or timed-out turns, 500
// with a generic localized message otherwise. Raw provider errors never
// reach the client.
func (s *Server) writeFortuneError(c *gin.Context, err error, lang persona.Language, generic func(persona.Language) string) {
	if !persona.ValidLanguage(lang) {
		lang = persona.LangEnglish
	}

	switch {
	case mysterrors.IsRateLimited(err):
		c.JSON(http.StatusTooManyRequests, errorResponse{Error: persona.RateLimitText(lang)})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Client went away or the turn timed out; no localized body helps.
		c.JSON(http.StatusGatewayTimeout, errorResponse{Error: generic(lang)})
	default:
		s.logger.Error("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: generic(lang)})
	}
}
