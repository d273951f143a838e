// Package auth handles credential storage and retrieval for Lineup.
//
// Credentials are sourced in the following priority order:
//  1. Environment variable: LINEUP_TOKEN
//  2. OS Keyring (macOS Keychain, Windows Credential Manager, Linux Secret Service)
//  3. Config file fallback: <user config dir>/lineup/access-token (for non-interactive environments)
package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/lineup-dev/lineup/internal/paths"
)

const (
	// keyringService is the service name used in OS keyring storage.
	keyringService = "lineup"
	// keyringUser is the user/account name used in OS keyring storage.
	keyringUser = "access-token"
	// envVarName is the environment variable for the access token.
	envVarName = "LINEUP_TOKEN"
)

// CredentialSource indicates where credentials were found.
type CredentialSource string

// Credential source constants identify where credentials were loaded from.
const (
	SourceEnv     CredentialSource = "environment variable"
	SourceKeyring CredentialSource = "keyring"
	SourceFile    CredentialSource = "config file"
	SourceNone    CredentialSource = ""
)

// GetCredentials returns the access token and its source.
// Returns empty strings if no credentials are found.
func GetCredentials() (source CredentialSource, token string) {
	// Priority 1: Environment variable
	if t := os.Getenv(envVarName); t != "" {
		return SourceEnv, t
	}

	// Priority 2: OS Keyring
	if t, err := keyring.Get(keyringService, keyringUser); err == nil && t != "" {
		return SourceKeyring, t
	}

	// Priority 3: Config file fallback
	if t := readCredentialsFile(); t != "" {
		return SourceFile, t
	}

	return SourceNone, ""
}

// StoreToken stores the access token in the OS keyring.
// Falls back to file storage if keyring is unavailable.
func StoreToken(token string) error {
	err := keyring.Set(keyringService, keyringUser, token)
	if err == nil {
		return nil
	}

	return writeCredentialsFile(token)
}

// DeleteToken removes the stored access token.
func DeleteToken() error {
	keyringErr := keyring.Delete(keyringService, keyringUser)

	fileErr := deleteCredentialsFile()

	// Return error only if both failed and nothing was deleted
	if keyringErr != nil && fileErr != nil {
		return fmt.Errorf("no stored credentials found")
	}

	return nil
}

// credentialsFilePath returns the path to the credentials file.
func credentialsFilePath() string {
	path, err := paths.CredentialsFile()
	if err != nil {
		return ""
	}

	return filepath.Clean(path)
}

// readCredentialsFile reads the access token from the file fallback.
func readCredentialsFile() string {
	path := credentialsFilePath()
	if path == "" {
		return ""
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path from controlled config directory
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(data))
}

// writeCredentialsFile writes the access token to the file fallback.
func writeCredentialsFile(token string) error {
	path := credentialsFilePath()
	if path == "" {
		return fmt.Errorf("could not determine home directory")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Owner read/write only
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	return nil
}

// deleteCredentialsFile removes the credentials file.
func deleteCredentialsFile() error {
	path := credentialsFilePath()
	if path == "" {
		return fmt.Errorf("could not determine home directory")
	}

	err := os.Remove(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("credentials file not found")
	}

	if err != nil {
		return fmt.Errorf("remove credentials file: %w", err)
	}

	return nil
}
