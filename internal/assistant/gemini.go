package assistant

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/Zanvi/lacasabarber/pkg/errors"
	"github.com/Zanvi/lacasabarber/pkg/logger"
	"github.com/Zanvi/lacasabarber/pkg/metrics"
)

// DefaultModel модель Gemini по умолчанию
const DefaultModel = "gemini-3-flash-preview"

// Gemini реализует Client через Gemini API
type Gemini struct {
	client *genai.Client
	model  string
	logger *logger.Logger
}

// NewGemini создает клиент Gemini API
func NewGemini(ctx context.Context, apiKey, model string, log *logger.Logger) (*Gemini, error) {
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{client: client, model: model, logger: log}, nil
}

// StartChat открывает диалог с системной инструкцией
func (g *Gemini) StartChat(ctx context.Context, systemPrompt string) (Conversation, error) {
	chat, err := g.client.Chats.Create(ctx, g.model, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}, nil)
	if err != nil {
		return nil, errors.ErrAssistantUnavailable.WithError(err)
	}
	return &geminiConversation{chat: chat, logger: g.logger}, nil
}

type geminiConversation struct {
	chat   *genai.Chat
	logger *logger.Logger
}

func (c *geminiConversation) Send(ctx context.Context, message string) (string, error) {
	start := time.Now()
	resp, err := c.chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		metrics.AssistantRequestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		c.logger.WithContext(ctx).Error("Gemini API error", logger.Error(err))
		return "", errors.ErrAssistantUnavailable.WithError(err)
	}
	metrics.AssistantRequestDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
	return resp.Text(), nil
}
