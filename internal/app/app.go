// Package app wires configuration, logging, the API client and the session
// store into the running TUI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/campuslib/stacks/internal/api"
	"github.com/campuslib/stacks/internal/config"
	"github.com/campuslib/stacks/internal/log"
	"github.com/campuslib/stacks/internal/prefs"
	"github.com/campuslib/stacks/internal/session"
	"github.com/campuslib/stacks/internal/ui"
)

// Options configure the stacks application.
type Options struct {
	ConfigPath string // empty uses default ~/.config/stacks/config.toml
	PrefsPath  string // empty uses default ~/.config/stacks/prefs.toml
	ServerURL  string // overrides the configured backend base URL
}

// Run boots the stacks TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.ServerURL != "" {
		cfg.ServerURL = opts.ServerURL
	}

	// A fullscreen TUI owns stdout, so the logger writes to a file.
	log.Init(cfg.LogFile)
	defer log.Sync()

	userPrefs := prefs.Load(opts.PrefsPath)

	client, err := api.NewClient(cfg.ServerURL, time.Duration(cfg.RequestTimeoutSeconds)*time.Second)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	// The session is resolved once by the UI's startup command; the store
	// begins pending and every view gates on it.
	store := session.NewStore()

	return ui.Run(ui.Options{
		Context:      ctx,
		Client:       client,
		Session:      store,
		Config:       &cfg,
		ThemeName:    userPrefs.Theme,
		PrefsPath:    opts.PrefsPath,
		HistoryLimit: userPrefs.HistoryLimit,
	})
}
