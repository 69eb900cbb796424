package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/heritage-bijoux/appraiser/internal/draft"
	"github.com/heritage-bijoux/appraiser/internal/gemini"
	"github.com/heritage-bijoux/appraiser/internal/ollama"
	"github.com/heritage-bijoux/appraiser/internal/openai"
	"github.com/heritage-bijoux/appraiser/internal/photos"
	"github.com/heritage-bijoux/appraiser/internal/providers"
)

const (
	DefaultProvider    = "gemini"
	DefaultTemperature = 0.4
)

var (
	ErrNoPhotos            = errors.New("at least one photo is required")
	ErrUnsupportedProvider = errors.New("unsupported provider")
)

var defaultModels = map[string]string{
	"gemini": "gemini-1.5-flash",
	"openai": "gpt-4o",
	"ollama": "mistral-small3.2:24b",
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	return defaultModels[provider]
}

// Service asks a vision model to appraise the photos of one piece.
type Service struct {
	providers   map[string]providers.Provider
	provider    string
	model       string
	temperature float64
}

type Options struct {
	Provider    string
	Model       string
	Temperature float64
}

// NewService registers the built-in providers.
func NewService(opts Options) *Service {
	return NewServiceWith(map[string]providers.Provider{
		"gemini": gemini.New(),
		"openai": openai.New(),
		"ollama": ollama.New(),
	}, opts)
}

func NewServiceWith(registry map[string]providers.Provider, opts Options) *Service {
	if opts.Provider == "" {
		opts.Provider = DefaultProvider
	}
	return &Service{
		providers:   registry,
		provider:    opts.Provider,
		model:       opts.Model,
		temperature: opts.Temperature,
	}
}

// Providers lists the registered provider names.
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Analyze sends the photos with the appraisal prompt and returns the raw
// model text. Empty provider and model fall back to the service defaults.
func (s *Service) Analyze(ctx context.Context, set []photos.Photo, provider, model string) (string, error) {
	if len(set) == 0 {
		return "", ErrNoPhotos
	}

	if provider == "" {
		provider = s.provider
	}
	p, ok := s.providers[provider]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
	if model == "" {
		model = s.model
		if model == "" || provider != s.provider {
			model = DefaultModel(provider)
		}
	}

	images := make([][]byte, 0, len(set))
	for i, photo := range set {
		data, err := photo.Bytes()
		if err != nil {
			return "", fmt.Errorf("photo %d: %w", i, err)
		}
		images = append(images, data)
	}

	start := time.Now()
	text, err := p.ExtractText(ctx, providers.Config{
		Model:       model,
		Temperature: s.temperature,
		Prompt:      BuildPrompt(),
		Images:      images,
	})
	if err != nil {
		return "", fmt.Errorf("analysis with %s failed: %w", provider, err)
	}

	slog.Info("Analysis complete", "provider", provider, "model", model, "photos", len(set), "duration", time.Since(start), "length", len(text))
	return text, nil
}

// Draft runs Analyze and normalizes the answer. A *draft.PayloadError keeps
// the raw text when the answer cannot be used.
func (s *Service) Draft(ctx context.Context, set []photos.Photo, provider, model string) (*draft.Draft, error) {
	raw, err := s.Analyze(ctx, set, provider, model)
	if err != nil {
		return nil, err
	}
	d, err := draft.FromAnalysis(raw)
	if err != nil {
		slog.Warn("Analysis answer could not be normalized", "err", err, "raw", truncate(raw, 200))
		return nil, err
	}
	return d, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
