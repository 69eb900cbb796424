package gemini

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/heritage-bijoux/appraiser/internal/providers"
	"google.golang.org/api/option"
)

// Gemini talks to Google Gemini through the official client.
type Gemini struct {
	opts []option.ClientOption
}

// New reads GEMINI_API_KEY at call time. Extra options are appended to
// the client options on every request.
func New(opts ...option.ClientOption) *Gemini {
	return &Gemini{opts: opts}
}

func (g *Gemini) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	opts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, g.opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(config.Model)
	model.SetTemperature(float32(config.Temperature))

	resp, err := model.GenerateContent(ctx, parts(config)...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates returned from Gemini", providers.ErrEmptyResponse)
	}

	text := candidateText(resp.Candidates[0])
	if text == "" {
		return "", fmt.Errorf("%w: empty content returned from Gemini", providers.ErrEmptyResponse)
	}
	return text, nil
}

// parts puts the prompt first, then every image in order.
func parts(config providers.Config) []genai.Part {
	out := make([]genai.Part, 0, len(config.Images)+1)
	out = append(out, genai.Text(config.Prompt))
	for _, img := range config.Images {
		out = append(out, genai.ImageData("jpeg", img))
	}
	return out
}

func candidateText(candidate *genai.Candidate) string {
	if candidate == nil || candidate.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
