package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/KirkDiggler/chimera-protocol/internal/clients/ai"
	"github.com/KirkDiggler/chimera-protocol/internal/config"
	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	"github.com/KirkDiggler/chimera-protocol/internal/pkg/clock"
	"github.com/KirkDiggler/chimera-protocol/internal/prompts"
	redisclient "github.com/KirkDiggler/chimera-protocol/internal/redis"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/maps"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/snapshots"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/templates"
)

// dependencies are the collaborators shared by the server and play commands
type dependencies struct {
	maps      maps.Repository
	templates templates.Repository
	dm        ai.TextGenerator
	player    ai.TextGenerator
	images    ai.ImageGenerator
	prompts   *prompts.Set
	store     snapshots.Repository
	clock     clock.Clock

	closers []io.Closer
}

func (d *dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			slog.Warn("Failed to close dependency", "error", err)
		}
	}
}

// offline forces the scripted generators, for playing without API keys
func buildDependencies(ctx context.Context, cfg *config.Config, offline bool) (*dependencies, error) {
	d := &dependencies{clock: clock.New()}

	if err := d.loadContent(cfg); err != nil {
		return nil, err
	}
	if err := d.buildGenerators(ctx, cfg, offline); err != nil {
		d.Close()
		return nil, err
	}
	if err := d.buildStore(ctx, cfg); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *dependencies) loadContent(cfg *config.Config) error {
	var err error
	if cfg.MapsDir != "" {
		d.maps, err = maps.LoadFS(os.DirFS(cfg.MapsDir))
	} else {
		d.maps, err = maps.LoadBuiltin()
	}
	if err != nil {
		return errors.Wrap(err, "failed to load maps")
	}

	d.templates, err = templates.LoadBuiltin()
	if err != nil {
		return errors.Wrap(err, "failed to load templates")
	}

	d.prompts = prompts.Default()
	if cfg.PromptsFile != "" {
		d.prompts, err = prompts.Load(cfg.PromptsFile)
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *dependencies) buildGenerators(ctx context.Context, cfg *config.Config, offline bool) error {
	textCfg, playerCfg, imageCfg := cfg.TextProviderConfig(), cfg.PlayerProviderConfig(), cfg.ImageProviderConfig()
	if offline {
		textCfg = ai.ProviderConfig{Provider: ai.ProviderOffline}
		playerCfg, imageCfg = textCfg, textCfg
	}

	var err error
	if d.dm, err = ai.NewTextGenerator(ctx, textCfg); err != nil {
		return errors.Wrap(err, "failed to create dm generator")
	}
	d.track(d.dm)
	if d.player, err = ai.NewTextGenerator(ctx, playerCfg); err != nil {
		return errors.Wrap(err, "failed to create player generator")
	}
	d.track(d.player)
	if d.images, err = ai.NewImageGenerator(ctx, imageCfg); err != nil {
		return errors.Wrap(err, "failed to create image generator")
	}
	return nil
}

func (d *dependencies) buildStore(ctx context.Context, cfg *config.Config) error {
	switch strings.ToLower(cfg.Store) {
	case config.StoreRedis:
		client, err := redisclient.NewClientFromURL(cfg.RedisURL)
		if err != nil {
			return errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to create redis client")
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return errors.WrapWithCode(err, errors.CodeUnavailable, "failed to reach redis")
		}
		d.track(client)

		d.store, err = snapshots.NewRedis(&snapshots.RedisConfig{
			Client: client,
			Clock:  d.clock,
			TTL:    cfg.SnapshotTTL,
		})
		if err != nil {
			return errors.Wrap(err, "failed to create redis snapshot store")
		}

	case config.StoreSQLite:
		repo, err := snapshots.NewSQLite(ctx, &snapshots.SQLiteConfig{
			Path:  cfg.SQLitePath,
			Clock: d.clock,
		})
		if err != nil {
			return errors.Wrap(err, "failed to create sqlite snapshot store")
		}
		d.track(repo)
		d.store = repo

	default:
		d.store = snapshots.NewInMemory(d.clock)
	}

	slog.InfoContext(ctx, "Snapshot store ready", "store", strings.ToLower(cfg.Store))
	return nil
}

// track remembers v for Close when it holds resources
func (d *dependencies) track(v any) {
	if c, ok := v.(io.Closer); ok {
		d.closers = append(d.closers, c)
	}
}
