package providers

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
)

// OllamaProvider talks to a local OpenAI-compatible endpoint (Ollama's /v1
// surface). It is the default backend: no credential leaves the machine.
type OllamaProvider struct {
	client     openai.Client
	model      string
	embedModel string
}

// NewOllamaProvider creates a provider against the given base URL. The API
// key is a placeholder; local endpoints ignore it but the client requires one.
func NewOllamaProvider(baseURL, model, embedModel string) *OllamaProvider {
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey("ollama"),
	)
	return &OllamaProvider{
		client:     client,
		model:      model,
		embedModel: embedModel,
	}
}

// Chat implements the Provider interface against the local model.
func (p *OllamaProvider) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(userPrompt))

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no response from local model")
	}

	logrus.WithFields(logrus.Fields{
		"model":         p.model,
		"input_tokens":  completion.Usage.PromptTokens,
		"output_tokens": completion.Usage.CompletionTokens,
	}).Debug("[OLLAMA] Chat completed")

	return completion.Choices[0].Message.Content, nil
}

// ChatStructured asks the local model for JSON constrained by the given
// schema. The raw JSON string is returned; parsing stays with the caller.
func (p *OllamaProvider) ChatStructured(ctx context.Context, systemPrompt, userPrompt, schemaName string, schema map[string]any) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(userPrompt))

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schemaName,
					Schema: any(schema),
					Strict: openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no response from local model")
	}
	return completion.Choices[0].Message.Content, nil
}

// Embedding implements the Embedder interface via the local embedding model.
func (p *OllamaProvider) Embedding(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(p.embedModel),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
