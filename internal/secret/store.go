// Package secret persists the received credential bundle in the OS keyring
// (Keychain, Secret Service, WinCred). The bundle is stored exactly as the
// login page POSTed it; nothing here parses or validates its shape.
package secret

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// ServiceName for keyring entries
const ServiceName = "authbridge"

// ErrNotFound indicates no credential is stored for the project.
var ErrNotFound = errors.New("no stored credential")

// CredentialStore saves and retrieves the opaque credential JSON, keyed by
// Firebase project ID so multiple deployments can coexist on one machine.
type CredentialStore struct {
	serviceName string
}

// NewCredentialStore creates a store backed by the OS keyring.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{serviceName: ServiceName}
}

func credentialKey(projectID string) string {
	return "credential:" + projectID
}

// Store saves the credential payload for the given project.
func (s *CredentialStore) Store(projectID, payload string) error {
	if err := keyring.Set(s.serviceName, credentialKey(projectID), payload); err != nil {
		return fmt.Errorf("failed to store credential in keyring: %w", err)
	}
	return nil
}

// Load retrieves the stored credential payload, or ErrNotFound.
func (s *CredentialStore) Load(projectID string) (string, error) {
	payload, err := keyring.Get(s.serviceName, credentialKey(projectID))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read credential from keyring: %w", err)
	}
	return payload, nil
}

// Delete removes the stored credential. Deleting a credential that does not
// exist is not an error.
func (s *CredentialStore) Delete(projectID string) error {
	err := keyring.Delete(s.serviceName, credentialKey(projectID))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete credential from keyring: %w", err)
	}
	return nil
}
