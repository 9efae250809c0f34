package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"github.com/yuri-sevatz/youtube-sync/internal/catalog"
	"github.com/yuri-sevatz/youtube-sync/internal/config"
	"github.com/yuri-sevatz/youtube-sync/internal/converter"
	"github.com/yuri-sevatz/youtube-sync/internal/engine"
	"github.com/yuri-sevatz/youtube-sync/internal/identity"
	"github.com/yuri-sevatz/youtube-sync/internal/logging"
	"github.com/yuri-sevatz/youtube-sync/internal/provider"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// environment is everything a catalog-touching command needs, opened per
// invocation and closed when the command finishes.
type environment struct {
	store  *catalog.Store
	engine *engine.Engine

	close func()
}

// withEnvironment opens the catalog, wires the resolver, provider client and
// engine, runs pending migrations, and hands the environment to fn.
func (c *commandContext) withEnvironment(ctx context.Context, fn func(context.Context, *environment) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	extractors := provider.DefaultExtractors()
	resolver := identity.NewResolver(extractors, converter.Builtin())
	client := provider.NewCLI(extractors, logger,
		provider.WithBinary(cfg.Provider.Binary),
		provider.WithTimeout(cfg.ProviderTimeout()),
		provider.WithOutputTemplate(cfg.OutputTemplate),
		provider.WithDownloadDir(cfg.DownloadDir),
		provider.WithExtraArgs(cfg.Provider.ExtraArgs...),
	)
	eng := engine.New(store, resolver, client, logger,
		engine.WithDefaultInterval(cfg.Interval()))

	env := &environment{
		store:  store,
		engine: eng,
		close: func() {
			_ = store.Close()
		},
	}
	defer env.close()

	if _, err := eng.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate catalog: %w", err)
	}
	return fn(ctx, env)
}

// withLock serializes sync passes across processes with a lock file beside
// the catalog database.
func (c *commandContext) withLock(fn func() error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	lock := flock.New(cfg.Database + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire sync lock: %w", err)
	}
	if !ok {
		return errors.New("another ytsync run is already in progress")
	}
	defer func() {
		_ = lock.Unlock()
	}()
	return fn()
}

func openStore(cfg *config.Config) (*catalog.Store, error) {
	store, err := catalog.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", cfg.Database, err)
	}
	return store, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
