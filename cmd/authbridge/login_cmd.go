package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aitodo/authbridge/internal/auth"
	"github.com/aitodo/authbridge/internal/secret"
	"github.com/aitodo/authbridge/internal/storage"
)

var (
	loginCmd = &cobra.Command{
		Use:   "login",
		Short: "Sign in with Google via the external browser",
		Long: `Start a loopback callback listener, open the default browser at the hosted
login page and wait for the credential callback. On success the credential
bundle is stored in the OS keyring and the sign-in is recorded locally.

Examples:
  authbridge login
  authbridge login --timeout=2m
  authbridge login --mode=redirect --log-level=debug`,
		RunE: runLogin,
	}

	loginTimeout time.Duration
	loginMode    string
	printPayload bool
)

func init() {
	loginCmd.Flags().DurationVar(&loginTimeout, "timeout", 5*time.Minute, "How long to wait for the browser callback")
	loginCmd.Flags().StringVar(&loginMode, "mode", "", "Sign-in mode: popup or redirect (overrides config)")
	loginCmd.Flags().BoolVar(&printPayload, "print", false, "Print the received credential JSON to stdout instead of only storing it")
}

func runLogin(_ *cobra.Command, _ []string) error {
	logger, err := setupLogger()
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if loginMode != "" {
		cfg.Firebase.SignInMode = loginMode
	}
	if err := cfg.ValidateForLogin(); err != nil {
		return err
	}

	history, err := storage.Open(cfg.DataDir, logger)
	if err != nil {
		return fmt.Errorf("failed to open local database: %w", err)
	}
	defer history.Close()

	flow := auth.NewFlow(cfg, logger,
		auth.WithCredentialSink(secret.NewCredentialStore()),
		auth.WithHistory(history),
	)

	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	defer cancel()

	fmt.Printf("Waiting for sign-in in your browser (project %s, timeout %v)...\n",
		cfg.Firebase.ProjectID, loginTimeout)

	result, err := flow.Run(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrLoginTimeout) {
			return fmt.Errorf("no sign-in completed within %v", loginTimeout)
		}
		return err
	}

	fmt.Printf("Signed in. Credential stored in the OS keyring (%d bytes).\n", len(result.Payload))
	if printPayload {
		fmt.Println(result.Payload)
	}
	return nil
}
