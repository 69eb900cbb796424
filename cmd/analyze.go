package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/heritage-bijoux/appraiser/internal/draft"
	"github.com/heritage-bijoux/appraiser/internal/photos"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newAnalyzeCmd() *cobra.Command {
	var provider, model string

	cmd := &cobra.Command{
		Use:   "analyze <image>...",
		Short: "Draft a listing from photos of one piece",
		Long: `Normalizes the given photos, sends them to the vision model and prints
the resulting draft as YAML. The draft can be edited and passed to publish.`,
		Example: `  appraiser analyze ring-front.jpg ring-side.jpg > ring.yaml
  appraiser analyze --provider ollama --model llava brooch.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), appConfig)
			if err != nil {
				return err
			}
			defer a.Close()

			set, err := loadPhotos(cmd, a.normalizer, args)
			if err != nil {
				return err
			}

			d, err := a.analysis.Draft(cmd.Context(), set, provider, model)
			if err != nil {
				var payloadErr *draft.PayloadError
				if errors.As(err, &payloadErr) {
					fmt.Fprintln(cmd.ErrOrStderr(), payloadErr.Raw)
				}
				return err
			}
			return writeYAML(cmd, d)
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider to use (gemini, openai, ollama)")
	cmd.Flags().StringVar(&model, "model", "", "Model to use (defaults depend on provider)")

	return cmd
}

// loadPhotos reads and normalizes image files. Unreadable or undecodable
// files are reported and skipped; it fails only when nothing is left.
func loadPhotos(cmd *cobra.Command, normalizer *photos.Normalizer, paths []string) ([]photos.Photo, error) {
	files := make([]photos.File, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: %v\n", path, err)
			continue
		}
		files = append(files, photos.File{Name: filepath.Base(path), Data: data})
	}

	result := normalizer.NormalizeAll(cmd.Context(), files, appConfig.ImageWorkers)
	for _, failure := range result.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s\n", failure.Error())
	}
	if len(result.Photos) == 0 {
		return nil, fmt.Errorf("no usable photos among %d file(s)", len(paths))
	}
	return result.Photos, nil
}

func writeYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
