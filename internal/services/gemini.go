package services

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/genai"
)

type geminiClient struct {
	client        *genai.Client
	modelName     string
	contentStore  ContentStore
	parser        PDFParserService
	promptBuilder *PromptBuilder
}

// NewGeminiInferenceClient builds the Gemini-backed inference client.
// The client resolves document references against the content store
// itself, so callers only ever hand it a path.
func NewGeminiInferenceClient(
	apiKey string,
	modelName string,
	contentStore ContentStore,
	parser PDFParserService,
) (InferenceClient, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiClient{
		client:        client,
		modelName:     modelName,
		contentStore:  contentStore,
		parser:        parser,
		promptBuilder: NewPromptBuilder(),
	}, nil
}

// Feedback implements InferenceClient.
func (g *geminiClient) Feedback(ctx context.Context, documentRef string, inst Instruction) (*Completion, error) {
	blob, err := g.contentStore.Open(ctx, documentRef)
	if err != nil {
		return nil, fmt.Errorf("failed to open document %q: %w", documentRef, err)
	}
	defer blob.Close()

	data, err := io.ReadAll(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %q: %w", documentRef, err)
	}

	resumeText, err := g.parser.ExtractText(data)
	if err != nil {
		return nil, fmt.Errorf("failed to extract document text: %w", err)
	}

	prompt := g.promptBuilder.BuildFeedbackPrompt(resumeText, inst)

	temperature := float32(0.2)
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate feedback: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("no response generated (nil response)")
	}

	if text := resp.Text(); text != "" {
		return &Completion{Message: Message{Content: PlainContent(text)}}, nil
	}

	// No aggregated text; fall back to the raw candidate parts.
	var parts []ContentPart
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" {
				parts = append(parts, ContentPart{Text: part.Text})
			}
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("no text content in response")
	}

	return &Completion{Message: Message{Content: PartsContent(parts...)}}, nil
}
