// Package cli wires the connector's commands: content source bootstrap,
// the full/incremental/deletion sync runs, and permission sync.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/zoomsync/internal/adapters/driven/search/workplace"
	"github.com/custodia-labs/zoomsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/zoomsync/internal/config"
	"github.com/custodia-labs/zoomsync/internal/connectors/zoom"
	"github.com/custodia-labs/zoomsync/internal/core/services"
	"github.com/custodia-labs/zoomsync/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "zoomsync",
	Short: "Sync Zoom content into Workplace Search",
	Long: `zoomsync extracts users, meetings, recordings, chats and related
objects from a Zoom account and keeps them searchable in a Workplace
Search content source.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "zoomsync.yml",
		"path to the connector configuration file")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the wired services a command picks from.
type app struct {
	cfg         *config.Config
	store       *sqlite.Store
	search      *workplace.Client
	runner      *services.SyncRunner
	deletion    *services.DeletionReconciler
	permissions *services.PermissionReconciler
}

// requireSourceID guards the commands that talk to an existing content
// source.
func (a *app) requireSourceID() error {
	if a.cfg.EnterpriseSearch.SourceID == "" {
		return fmt.Errorf("enterprise_search.source_id is not set, run bootstrap first")
	}
	return nil
}

// newApp loads the configuration and wires the full dependency graph.
// The returned cleanup closes the store and flushes the logger.
func newApp() (*app, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		return nil, nil, fmt.Errorf("configure logging: %w", err)
	}

	store, err := sqlite.NewStore(cfg.DataDirectory)
	if err != nil {
		return nil, nil, fmt.Errorf("open local store: %w", err)
	}
	cleanup := func() {
		store.Close()
		logger.Sync()
	}

	auth := zoom.NewAuthenticator(
		cfg.Zoom.ClientID,
		cfg.Zoom.ClientSecret,
		cfg.Zoom.AuthorizationCode,
		cfg.Zoom.RedirectURI,
		store.CredentialStore(),
	)
	client := zoom.NewClient(auth, cfg.RetryCount)
	directory := zoom.NewAccountDirectory(client)
	orch := services.NewOrchestrator(cfg, zoom.Fetchers(client), directory)

	search := workplace.NewClient(
		cfg.EnterpriseSearch.HostURL,
		cfg.EnterpriseSearch.APIKey,
		cfg.EnterpriseSearch.SourceID,
	)

	return &app{
		cfg:         cfg,
		store:       store,
		search:      search,
		runner:      services.NewSyncRunner(cfg, orch, search, store.LocalStore(), store.CheckpointStore()),
		deletion:    services.NewDeletionReconciler(cfg, orch, client, search, store.LocalStore()),
		permissions: services.NewPermissionReconciler(cfg, search),
	}, cleanup, nil
}
