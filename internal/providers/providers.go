package providers

import (
	"context"
	"errors"
)

var ErrEmptyResponse = errors.New("provider returned no text")

// Config is one multimodal request: a prompt plus JPEG images.
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	Images      [][]byte
}

// Provider sends a prompt and images to a vision model and returns its text.
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}
