package eval

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiGenerator implements Generator on the Gemini API: audio goes
// through the File API, feedback comes from a single GenerateContent call.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator wraps a process-wide genai client.
func NewGeminiGenerator(client *genai.Client, model string) *GeminiGenerator {
	return &GeminiGenerator{client: client, model: model}
}

// UploadMedia registers a local audio file with the Gemini File API.
func (g *GeminiGenerator) UploadMedia(ctx context.Context, path, mimeType string) (*MediaRef, error) {
	file, err := g.client.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{MIMEType: mimeType})
	if err != nil {
		return nil, fmt.Errorf("gemini file upload: %w", err)
	}
	return &MediaRef{Name: file.Name, URI: file.URI, MIMEType: mimeType}, nil
}

// DeleteMedia releases an uploaded file.
func (g *GeminiGenerator) DeleteMedia(ctx context.Context, ref *MediaRef) error {
	_, err := g.client.Files.Delete(ctx, ref.Name, nil)
	return err
}

// Generate runs one synchronous evaluation call.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, media *MediaRef) (string, error) {
	parts := []*genai.Part{{Text: prompt}}
	if media != nil {
		parts = append(parts, genai.NewPartFromURI(media.URI, media.MIMEType))
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}
