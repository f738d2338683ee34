package assistant

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const systemInstruction = "You are the assistant of an online store. " +
	"Answer briefly and politely about products, delivery and payment. " +
	"Payment methods are cash on delivery, MoMo and bank transfer. " +
	"If you do not know the answer, suggest contacting the store."

// GeminiGenerator генерирует ответы через Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator создаёт генератор ответов Gemini.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate возвращает ответ модели на сообщение пользователя.
func (g *GeminiGenerator) Generate(ctx context.Context, message string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(message), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return resp.Text(), nil
}
