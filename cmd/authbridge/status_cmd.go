package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aitodo/authbridge/internal/secret"
	"github.com/aitodo/authbridge/internal/storage"
)

var (
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show stored credential state and recent sign-ins",
		RunE:  runStatus,
	}

	statusLimit int
)

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 5, "Number of recent sign-ins to show")
}

func runStatus(_ *cobra.Command, _ []string) error {
	logger, err := setupLogger()
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store := secret.NewCredentialStore()
	payload, err := store.Load(cfg.Firebase.ProjectID)
	switch {
	case errors.Is(err, secret.ErrNotFound):
		fmt.Printf("Project %s: not signed in\n", cfg.Firebase.ProjectID)
	case err != nil:
		return err
	default:
		fmt.Printf("Project %s: signed in (credential of %d bytes in keyring)\n",
			cfg.Firebase.ProjectID, len(payload))
	}

	history, err := storage.Open(cfg.DataDir, logger)
	if err != nil {
		return fmt.Errorf("failed to open local database: %w", err)
	}
	defer history.Close()

	if err := history.PruneOlderThan(time.Now().Add(-storage.DefaultRetention)); err != nil {
		return fmt.Errorf("failed to prune sign-in history: %w", err)
	}

	records, err := history.ListSignIns(statusLimit)
	if err != nil {
		return fmt.Errorf("failed to read sign-in history: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No recorded sign-ins.")
		return nil
	}

	fmt.Println("Recent sign-ins:")
	for _, rec := range records {
		fmt.Printf("  %s  project=%s  payload=%dB  id=%s\n",
			rec.CompletedAt.Local().Format(time.RFC3339),
			rec.ProjectID, rec.PayloadBytes, rec.CorrelationID)
	}
	return nil
}
