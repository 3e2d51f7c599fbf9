package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aitodo/authbridge/internal/secret"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored credential from the OS keyring",
	RunE:  runLogout,
}

func runLogout(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := secret.NewCredentialStore().Delete(cfg.Firebase.ProjectID); err != nil {
		return err
	}

	fmt.Printf("Signed out of project %s.\n", cfg.Firebase.ProjectID)
	return nil
}
