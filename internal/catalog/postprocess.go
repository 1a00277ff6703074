package catalog

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Tool validates catalogs and builds their serve cache; *opm.Runner is one
type Tool interface {
	Available() bool
	Validate(ctx context.Context, configsDir string) error
	ServeCache(ctx context.Context, configsDir, cacheDir string) error
}

// PostProcessOptions selects the post-processing steps
type PostProcessOptions struct {
	ConfigsDir   string
	CacheDir     string
	SkipValidate bool
}

// PostProcess validates the rendered catalog and builds its cache. Both steps
// are skipped with a warning when the tool is not installed; the cache is only
// built when a cache directory is set.
func PostProcess(ctx context.Context, tool Tool, opts PostProcessOptions, log *zap.Logger) error {
	if !tool.Available() {
		log.Warn("opm not found, skipping catalog validation and cache")
		return nil
	}

	if !opts.SkipValidate {
		if err := tool.Validate(ctx, opts.ConfigsDir); err != nil {
			return fmt.Errorf("catalog validation failed: %w", err)
		}
		log.Info("Catalog validated", zap.String("configs", opts.ConfigsDir))
	}

	if opts.CacheDir == "" {
		return nil
	}

	if err := os.MkdirAll(opts.CacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := tool.ServeCache(ctx, opts.ConfigsDir, opts.CacheDir); err != nil {
		return fmt.Errorf("failed to build catalog cache: %w", err)
	}
	log.Info("Catalog cache built", zap.String("cache", opts.CacheDir))

	return nil
}
