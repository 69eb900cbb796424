package cmd

import (
	"errors"
	"fmt"

	"github.com/heritage-bijoux/appraiser/internal/publish"
	"github.com/spf13/cobra"
)

func newPublishCmd() *cobra.Command {
	var draftPath string

	cmd := &cobra.Command{
		Use:   "publish --draft <file> [image]...",
		Short: "Publish a draft and its photos to Shopify",
		Long: `Creates a product on the configured Shopify store from the draft and the
given photos, then records it in the archive. The first photo becomes the
archive thumbnail.`,
		Example: `  appraiser analyze ring.jpg > ring.yaml
  appraiser publish --draft ring.yaml ring.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !appConfig.ShopifyConfigured() {
				return errors.New("shopify.domain and shopify.token must be set to publish")
			}

			raw, err := readInput(cmd, draftPath)
			if err != nil {
				return err
			}
			d, err := loadDraft(raw)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), appConfig)
			if err != nil {
				return err
			}
			defer a.Close()

			session := a.newSession()
			if len(args) > 0 {
				set, err := loadPhotos(cmd, a.normalizer, args)
				if err != nil {
					return err
				}
				if err := session.AppendPhotos(set...); err != nil {
					return err
				}
			}
			if err := session.SetDraft(d); err != nil {
				return err
			}

			item, err := a.workflow.Publish(cmd.Context(), session)
			if err != nil {
				var reconcileErr *publish.ReconcileError
				if errors.As(err, &reconcileErr) {
					fmt.Fprintf(cmd.ErrOrStderr(), "product %s exists on Shopify but is missing from the archive\n", reconcileErr.RemoteID)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Published %q as product %s (archive id %s)\n", item.Title, item.RemoteID, item.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&draftPath, "draft", "", "Draft file (YAML from analyze, or JSON payload; - for stdin)")
	_ = cmd.MarkFlagRequired("draft")

	return cmd
}
