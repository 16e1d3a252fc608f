package providers

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// GeminiProvider is the networked backend, used only for requests the brain
// escalates. Keyed by an API credential from configuration.
type GeminiProvider struct {
	apiKey string
	model  string
}

// NewGeminiProvider creates a provider for the given model and credential.
func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	return &GeminiProvider{apiKey: apiKey, model: model}
}

// Chat implements the Provider interface against the Gemini API.
func (p *GeminiProvider) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("gemini provider has no API key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", err
	}

	var genConfig *genai.GenerateContentConfig
	if systemPrompt != "" {
		genConfig = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, ""),
		}
	}

	result, err := client.Models.GenerateContent(ctx, p.model, genai.Text(userPrompt), genConfig)
	if err != nil {
		return "", err
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from gemini")
	}

	logrus.WithField("model", p.model).Debug("[GEMINI] Chat completed")
	return text, nil
}
