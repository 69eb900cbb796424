package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/heritage-bijoux/appraiser/internal/draft"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newDraftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft <file|->",
		Short: "Normalize a JSON payload into a draft",
		Long: `Reads a JSON payload in any supported shape (flat title/price/description/tags
or nested product/description/seo) and prints the normalized draft as YAML.`,
		Example: `  appraiser draft payload.json
  pbpaste | appraiser draft -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			d, err := draft.FromManualPayload(raw)
			if err != nil {
				return err
			}
			return writeYAML(cmd, d)
		},
	}
	return cmd
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// loadDraft accepts either a JSON payload or the YAML printed by analyze.
func loadDraft(raw string) (*draft.Draft, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "```") {
		return draft.FromManualPayload(raw)
	}

	var d draft.Draft
	if err := yaml.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("failed to parse draft: %w", err)
	}

	// run the edit rules so YAML drafts are cleaned like JSON ones
	clean := &draft.Draft{}
	err := clean.Apply(draft.Patch{
		Title:       &d.Title,
		Price:       &d.Price,
		Description: &d.Description,
		Tags:        d.Tags,
	})
	if err != nil {
		return nil, err
	}
	if clean.Tags == nil {
		clean.Tags = []string{}
	}
	if clean.Title == "" {
		return nil, errors.New("draft has no title")
	}
	return clean, nil
}
