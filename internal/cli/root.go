// Package cli wires the marksync commands: one-shot syncs, the polling
// daemon, provider validation, and local inspection.
package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/nhle/marksync/internal/credential"
	"github.com/nhle/marksync/internal/logger"
	"github.com/nhle/marksync/internal/model"
	"github.com/nhle/marksync/internal/notify"
	"github.com/nhle/marksync/internal/provider"
	"github.com/nhle/marksync/internal/provider/github"
	"github.com/nhle/marksync/internal/provider/jira"
	"github.com/nhle/marksync/internal/settings"
	"github.com/nhle/marksync/internal/store"
	"github.com/nhle/marksync/internal/syncer"
)

var (
	version = "dev"

	flagConfig   string
	flagLogLevel string
	flagDebug    bool
)

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "marksync",
	Short: "Sync pull requests and issues into a local bookmark tree",
	Long: `marksync keeps a local bookmark tree in step with your work items:
it fetches pull requests and issues from configured providers (GitHub, Jira),
reconciles them against the bookmarks synced last time, and applies the
resulting add/update/delete plan.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"config file (default ~/.config/marksync/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "",
		"minimum log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"debug mode: verbose logs, no sensitive-field redaction")
}

// app holds the wired collaborators shared by the commands.
type app struct {
	cfgPath  string
	cfg      *model.AppConfig
	log      *logger.Logger
	store    *store.SQLiteStore
	reader   settings.Reader
	notifier *notify.Service
	engine   *syncer.Engine
}

// newApp loads configuration and wires the store, logger, notifier, engine,
// and configured providers.
func newApp() (*app, error) {
	cfgPath := flagConfig
	if cfgPath == "" {
		cfgPath = model.DefaultConfigPath()
	}

	cfg, err := model.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	debugMode := cfg.Log.DebugMode || flagDebug
	if debugMode && flagLogLevel == "" {
		level = "debug"
	}

	log := logger.New(level, cfg.Log.Pretty, debugMode)

	st, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening bookmark store: %w", err)
	}

	reader := settings.NewFileStore(cfgPath)
	notifier := notify.NewService(desktopSender(log), reader, st, log)
	engine := syncer.New(st, reader, notifier, log)

	a := &app{
		cfgPath:  cfgPath,
		cfg:      cfg,
		log:      log,
		store:    st,
		reader:   reader,
		notifier: notifier,
		engine:   engine,
	}

	for _, pc := range cfg.Providers {
		if !pc.Enabled {
			continue
		}
		p, err := buildProvider(pc)
		if err != nil {
			log.Warn("skipping provider",
				logger.String("provider", pc.ID),
				logger.Error(err))
			continue
		}
		engine.Register(p)
	}

	return a, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("closing store failed", logger.Error(err))
	}
	_ = a.log.Sync()
}

// desktopSender prefers notify-send and falls back to log-only delivery on
// hosts without it.
func desktopSender(log *logger.Logger) notify.Sender {
	if _, err := exec.LookPath("notify-send"); err == nil {
		return notify.NewExecSender("")
	}
	return notify.NewLogSender(log)
}

// buildProvider constructs the adapter for a configured provider entry,
// reading its token from the system keyring.
func buildProvider(pc model.ProviderConfig) (provider.Provider, error) {
	token, err := credential.Get(credential.TokenKey(pc.ID))
	if err != nil {
		return nil, fmt.Errorf(
			"no token for %s (run: marksync credential set %s): %w",
			pc.ID, pc.ID, err)
	}

	switch model.ProviderType(pc.Type) {
	case model.ProviderTypeGitHub:
		return github.NewAdapter(pc.ID, pc.BaseURL, token, pc.Config["query"]), nil
	case model.ProviderTypeJira:
		if pc.BaseURL == "" {
			return nil, fmt.Errorf("provider %s: base_url is required", pc.ID)
		}
		return jira.NewAdapter(pc.ID, pc.BaseURL, token, pc.Config["jql"]), nil
	default:
		return nil, fmt.Errorf("provider %s: unknown type %q", pc.ID, pc.Type)
	}
}
