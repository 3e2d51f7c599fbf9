// Package auth orchestrates one browser-based sign-in attempt: it arms the
// loopback listener, opens the external browser at the login page, waits for
// the credential callback and persists the result.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aitodo/authbridge/internal/assets"
	"github.com/aitodo/authbridge/internal/config"
	"github.com/aitodo/authbridge/internal/events"
	"github.com/aitodo/authbridge/internal/loopback"
	"github.com/aitodo/authbridge/internal/storage"
)

// ErrLoginTimeout indicates the browser never delivered a callback before the
// flow deadline.
var ErrLoginTimeout = errors.New("timed out waiting for sign-in callback")

// CredentialSink persists the opaque credential payload. Satisfied by
// *secret.CredentialStore.
type CredentialSink interface {
	Store(projectID, payload string) error
}

// History records completed sign-ins. Satisfied by *storage.BoltDB.
type History interface {
	SaveSignIn(rec *storage.SignInRecord) error
}

// Result is what a completed sign-in attempt produced.
type Result struct {
	CorrelationID string
	Port          int
	Payload       string
}

// Flow is one sign-in attempt. Flows are single-use; build a fresh one per
// attempt.
type Flow struct {
	cfg     *config.Config
	logger  *zap.Logger
	creds   CredentialSink
	history History
	openURL func(*zap.Logger, string) error
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithCredentialSink persists the received payload after a successful
// callback.
func WithCredentialSink(sink CredentialSink) FlowOption {
	return func(f *Flow) { f.creds = sink }
}

// WithHistory records completed sign-ins.
func WithHistory(h History) FlowOption {
	return func(f *Flow) { f.history = h }
}

// withBrowserOpener replaces the browser launcher, for tests.
func withBrowserOpener(open func(*zap.Logger, string) error) FlowOption {
	return func(f *Flow) { f.openURL = open }
}

// NewFlow creates a sign-in flow for the given configuration.
func NewFlow(cfg *config.Config, logger *zap.Logger, opts ...FlowOption) *Flow {
	f := &Flow{
		cfg:     cfg,
		logger:  logger.Named("auth"),
		openURL: openBrowser,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run executes the flow and blocks until the callback arrives or ctx is done.
// The listener itself has no cancellation; ctx bounds only the wait, while the
// listener winds down on its own accept budget.
func (f *Flow) Run(ctx context.Context) (*Result, error) {
	if err := f.cfg.ValidateForLogin(); err != nil {
		return nil, err
	}

	correlationID := uuid.New().String()
	logger := f.logger.With(zap.String("correlation_id", correlationID))

	lcfg := f.cfg.Listener
	if lcfg == nil {
		lcfg = &config.ListenerConfig{}
	}

	page, err := assets.LoginPageFromFile(lcfg.LoginPagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load login page: %w", err)
	}

	notifier := events.NewOneShot()
	server := loopback.New(page, notifier,
		loopback.WithLogger(logger),
		loopback.WithMaxAccepts(lcfg.MaxAccepts),
		loopback.WithMaxRequestBytes(lcfg.MaxRequestBytes),
	)

	port, err := server.Start()
	if err != nil {
		return nil, fmt.Errorf("failed to start callback listener: %w", err)
	}

	loginURL := LoginURL(port, f.cfg.Firebase)
	logger.Info("Opening browser for sign-in", zap.Int("port", port))

	if err := f.openURL(logger, loginURL); err != nil {
		// Not fatal: the user can still open the URL by hand while the
		// listener keeps waiting.
		logger.Warn("Failed to open browser, open the URL manually",
			zap.String("url", loginURL),
			zap.Error(err))
	}

	payload, err := notifier.Wait(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLoginTimeout
		}
		return nil, fmt.Errorf("sign-in aborted: %w", err)
	}

	logger.Info("Sign-in callback received", zap.Int("payload_bytes", len(payload)))

	if f.creds != nil {
		if err := f.creds.Store(f.cfg.Firebase.ProjectID, payload); err != nil {
			return nil, fmt.Errorf("sign-in succeeded but credential could not be persisted: %w", err)
		}
	}

	if f.history != nil {
		rec := &storage.SignInRecord{
			CorrelationID: correlationID,
			ProjectID:     f.cfg.Firebase.ProjectID,
			CompletedAt:   time.Now(),
			PayloadBytes:  len(payload),
		}
		if err := f.history.SaveSignIn(rec); err != nil {
			logger.Warn("Failed to record sign-in history", zap.Error(err))
		}
	}

	return &Result{
		CorrelationID: correlationID,
		Port:          port,
		Payload:       payload,
	}, nil
}
