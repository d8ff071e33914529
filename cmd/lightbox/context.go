package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"lightbox/internal/catalog"
	"lightbox/internal/config"
	"lightbox/internal/logging"
	"lightbox/internal/meta"
	"lightbox/internal/undo"
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
		cfg, _, _, err := config.Load(path)
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

// session is one opened catalog with the metadata stack wired on top. It
// lives for a single command invocation; the store lock is released when the
// command returns.
type session struct {
	cfg     *config.Config
	store   *catalog.Store
	service *meta.Service
}

func (c *commandContext) withSession(fn func(context.Context, *session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	store, err := catalog.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	registry := meta.NewRegistry(store.DB(), store, logger)
	if err := registry.Load(ctx); err != nil {
		return err
	}
	history := undo.NewHistory(cfg.Catalog.UndoDepth)
	service := meta.NewService(store.DB(), registry, store, history, logger)

	return fn(ctx, &session{cfg: cfg, store: store, service: service})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
