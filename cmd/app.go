package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heritage-bijoux/appraiser/internal/analysis"
	"github.com/heritage-bijoux/appraiser/internal/archive"
	"github.com/heritage-bijoux/appraiser/internal/config"
	"github.com/heritage-bijoux/appraiser/internal/inventory"
	"github.com/heritage-bijoux/appraiser/internal/kv"
	"github.com/heritage-bijoux/appraiser/internal/photos"
	"github.com/heritage-bijoux/appraiser/internal/publish"
)

// app wires the collaborators every command shares.
type app struct {
	cfg        config.AppConfig
	store      kv.Store
	archive    *archive.Store
	normalizer *photos.Normalizer
	analysis   *analysis.Service
	// nil unless shopify.domain and shopify.token are set
	workflow *publish.Workflow
}

func openApp(ctx context.Context, cfg config.AppConfig) (*app, error) {
	store, err := kv.Open(ctx, kv.Options{
		Driver:        cfg.StoreDriver,
		Path:          cfg.StorePath,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	archiveStore := archive.NewStore(store, cfg.ArchiveKey)
	if _, err := archiveStore.Load(ctx); err != nil {
		if !errors.Is(err, archive.ErrCorruptArchive) {
			store.Close()
			return nil, err
		}
		slog.Warn("Continuing with an empty archive", "err", err)
	}

	a := &app{
		cfg:        cfg,
		store:      store,
		archive:    archiveStore,
		normalizer: photos.NewNormalizer(cfg.ImageMaxWidth, cfg.ImageQuality),
		analysis: analysis.NewService(analysis.Options{
			Provider:    cfg.AnalysisProvider,
			Model:       cfg.AnalysisModel,
			Temperature: cfg.AnalysisTemperature,
		}),
	}

	if cfg.ShopifyConfigured() {
		client, err := inventory.NewClient(cfg.ShopifyDomain, cfg.ShopifyToken, cfg.ShopifyAPIVersion)
		if err != nil {
			store.Close()
			return nil, err
		}
		a.workflow, err = publish.NewWorkflow(publish.WorkflowConfig{
			Inventory: client,
			Archive:   archiveStore,
		})
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	return a, nil
}

func (a *app) newSession() *publish.Session {
	return publish.NewSession(photos.NewSet(a.normalizer))
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Error("Unable to close store", "err", err)
	}
}
