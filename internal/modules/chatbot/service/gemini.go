package chatbot

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"nub.ac.bd/transport/internal/modules/chatbot/dto"
)

const maxOutputTokens = 1000

//go:embed knowledge.txt
var knowledge string

// LLMProvider answers a prompt given the previous turns.
type LLMProvider interface {
	Chat(ctx context.Context, history []dto.Message, prompt string) (string, error)
	Close()
}

type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(maxOutputTokens)

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// primer is sent ahead of every conversation and never stored.
func primer() []*genai.Content {
	instructions := "Suppose you are a chatbot for the Northern University Bangladesh portal, assisting students with their queries. " +
		"Ignore questions that are not about this university. Below is some information about the university.\n\n" + knowledge

	return []*genai.Content{
		{Role: dto.RoleUser, Parts: []genai.Part{genai.Text(instructions)}},
		{Role: dto.RoleModel, Parts: []genai.Part{genai.Text("OK")}},
	}
}

func (g *GeminiProvider) Chat(ctx context.Context, history []dto.Message, prompt string) (string, error) {
	cs := g.model.StartChat()
	cs.History = primer()
	for _, m := range history {
		parts := make([]genai.Part, 0, len(m.Parts))
		for _, p := range m.Parts {
			parts = append(parts, genai.Text(p.Text))
		}
		cs.History = append(cs.History, &genai.Content{Role: m.Role, Parts: parts})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}

func (g *GeminiProvider) Close() {
	g.client.Close()
}
