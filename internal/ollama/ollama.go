package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/heritage-bijoux/appraiser/internal/providers"
)

const DefaultURL = "http://localhost:11434"

// Ollama calls a local Ollama server's generate endpoint.
type Ollama struct {
	// URL overrides OLLAMA_URL when set.
	URL    string
	client *http.Client
}

func New() *Ollama {
	return &Ollama{client: &http.Client{}}
}

func (o *Ollama) baseURL() string {
	if o.URL != "" {
		return strings.TrimRight(o.URL, "/")
	}
	if env := os.Getenv("OLLAMA_URL"); env != "" {
		return strings.TrimRight(env, "/")
	}
	return DefaultURL
}

func (o *Ollama) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	images := make([]string, len(config.Images))
	for i, img := range config.Images {
		images[i] = base64.StdEncoding.EncodeToString(img)
	}

	requestBody, err := json.Marshal(map[string]any{
		"model":  config.Model,
		"prompt": config.Prompt,
		"images": images,
		"stream": false,
		"options": map[string]any{
			"temperature": config.Temperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL()+"/api/generate", bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}
	if response.Response == "" {
		return "", fmt.Errorf("%w: empty response from Ollama", providers.ErrEmptyResponse)
	}

	return response.Response, nil
}
