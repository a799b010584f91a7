package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gallery/internal/assets"
	"gallery/internal/config"
	"gallery/internal/db"
	"gallery/internal/history"
	"gallery/internal/repository"
	"gallery/internal/storage"
)

// app holds the collaborators opened for one command invocation.
type app struct {
	cfg  *config.Config
	db   *sql.DB
	repo *repository.Repository
	hist *history.Log
	mgr  *assets.Manager
}

func openApp(configPath string) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.FromFile(configPath)
	} else {
		cfg, err = config.Resolve()
	}
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	database, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	repo := repository.New(database, storage.New(cfg.DataDir))
	hist := history.New(database)
	return &app{
		cfg:  cfg,
		db:   database,
		repo: repo,
		hist: hist,
		mgr: assets.New(repo, hist, assets.Config{
			ThumbWidth:     cfg.ThumbnailWidth,
			ThumbHeight:    cfg.ThumbnailHeight,
			Quality:        cfg.ImageQuality,
			MaxUploadBytes: cfg.MaxUploadBytes,
		}),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		a          *app
	)

	rootCmd := &cobra.Command{
		Use:   "galleryctl",
		Short: "Manage gallery images from the command line",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
			var err error
			a, err = openApp(configPath)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a == nil {
				return nil
			}
			return a.Close()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (default: CONFIG_FILE or environment)")

	current := func() *app { return a }
	rootCmd.AddCommand(
		newImportCmd(current),
		newApplyCmd(current),
		newRevertCmd(current),
		newHistoryCmd(current),
		newListCmd(current),
		newDeleteCmd(current),
		newRepairCmd(current),
	)
	return rootCmd
}
