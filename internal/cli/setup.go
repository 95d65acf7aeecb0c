package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bodypress/bodypress/internal/backend"
	"github.com/bodypress/bodypress/internal/config"
	"github.com/bodypress/bodypress/internal/db"
	"github.com/bodypress/bodypress/internal/generate"
	"github.com/bodypress/bodypress/internal/journal"
	"github.com/bodypress/bodypress/internal/platform/logger"
	"github.com/bodypress/bodypress/internal/window"
)

// openJournal opens the store behind every journal-touching command. The
// caller owns the returned close func.
func openJournal() (*journal.Store, func(), error) {
	dbPath, err := config.DBPath()
	if err != nil {
		return nil, nil, err
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("bodypress not initialized. Run `bodypress init` first")
	}

	database, err := db.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return journal.NewStore(database), func() { database.Close() }, nil
}

// buildLocal assembles the on-device model lifecycle. Stored settings win
// over the config file so model switches persist without editing TOML.
func buildLocal(cfg config.Config, store *journal.Store, log zerolog.Logger) *backend.LocalModel {
	kind := store.SettingOr(journal.SettingLocalBackend, cfg.Local.Backend)
	model := store.SettingOr(journal.SettingLocalModel, cfg.Local.Model)
	bridge := backend.NewRuntimeBridge(cfg.Local.RuntimeURL, log)
	return backend.NewLocalModel(bridge, kind, model, log)
}

// buildRouter assembles the backend router over the remote service and the
// local lifecycle.
func buildRouter(cfg config.Config, store *journal.Store, log zerolog.Logger) *backend.Router {
	remote := backend.NewRemote(backend.RemoteConfig{
		BaseURL: cfg.Remote.BaseURL,
		APIKey:  cfg.Remote.APIKey,
		Model:   cfg.Remote.Model,
	})

	local := buildLocal(cfg, store, log)
	mode := backend.ParseMode(store.SettingOr(journal.SettingMode, cfg.Mode))
	return backend.NewRouter(remote, local, mode, log)
}

// buildGenerator assembles the window builder and generator on top of a
// router. The tokenizer is best-effort; without it token counts are
// estimated.
func buildGenerator(cfg config.Config, router *backend.Router, store *journal.Store, log zerolog.Logger) (*generate.Generator, *window.Builder) {
	tokenizer, err := window.NewTokenizer()
	if err != nil {
		tokenizer = nil
	}
	windows := window.NewBuilder(store, tokenizer)
	gen := generate.New(router, windows, log, generate.Options{
		Temperature: float32(cfg.Remote.Temperature),
		MaxTokens:   cfg.Remote.MaxTokens,
		ContextDays: cfg.Context.Days,
	})
	return gen, windows
}

// cliLogger is the quiet console logger interactive commands share.
func cliLogger() zerolog.Logger {
	return logger.Console(zerolog.WarnLevel)
}

// daemonLogger builds the JSON logger for long-running commands, honouring
// the --verbose flag convention.
func daemonLogger(component string, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return logger.New(component, level)
}

// parseTags splits a comma-separated tag flag into clean tags.
func parseTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
