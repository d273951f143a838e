package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lineup-dev/lineup/internal/auth"
	"github.com/lineup-dev/lineup/internal/client"
	"github.com/lineup-dev/lineup/internal/config"
	clierrors "github.com/lineup-dev/lineup/internal/errors"
	"github.com/lineup-dev/lineup/internal/output"
	"github.com/lineup-dev/lineup/internal/prompt"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
		Long:  `Authenticate with the Lineup platform using your access token.`,
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var (
		tokenFlag  string
		expiryFlag string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with your access token",
		Long: `Authenticate with the Lineup platform.

Your access token will be stored securely in your system's keyring
(macOS Keychain, Windows Credential Manager, or Linux Secret Service).

You can also set the LINEUP_TOKEN environment variable.`,
		Example: `  lineup auth login
  lineup auth login --token <token> --expires 2026-12-31T00:00:00Z`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			prompter := prompt.New(out)

			if key := os.Getenv("LINEUP_TOKEN"); key != "" {
				out.Info("LINEUP_TOKEN environment variable is set")
				out.Muted("Environment variable takes precedence over stored credentials")
				out.Println()
			}

			var token string
			if tokenFlag != "" {
				token = tokenFlag
			} else {
				if !prompter.CanPrompt() {
					return clierrors.CannotPrompt("LINEUP_TOKEN")
				}

				var err error

				token, err = prompter.Password("Enter your Lineup access token")
				if err != nil {
					return fmt.Errorf("read token prompt: %w", err)
				}
			}

			if token == "" {
				return clierrors.TokenEmpty()
			}

			spin := out.Spinner("Validating access token")
			spin.Start()

			cfg := config.Load()
			apiClient := client.New(token).WithBaseURL(cfg.APIURL())

			identity, err := apiClient.ValidateToken(cmd.Context())
			if err != nil {
				spin.StopWithFailure("Invalid access token")
				return clierrors.AuthFailed(err)
			}

			spin.Stop()

			if err := auth.StoreToken(token); err != nil {
				return clierrors.ConfigFailed("store credentials", err)
			}

			if expiryFlag != "" {
				expiry, parseErr := time.Parse(time.RFC3339, expiryFlag)
				if parseErr != nil {
					return clierrors.Wrap(clierrors.ExitUsage, "Invalid --expires value", parseErr).
						WithHint("Use RFC 3339, e.g. 2026-12-31T00:00:00Z")
				}

				if err := cfg.Set("auth.token_expiry", expiry.Format(time.RFC3339)); err != nil {
					return clierrors.ConfigFailed("record token expiry", err)
				}
			}

			out.Success("Authenticated as %s (%s)", identity.Name, identity.Email)

			return nil
		},
	}

	cmd.Flags().StringVar(&tokenFlag, "token", "", "Access token for non-interactive login (prefer LINEUP_TOKEN env var to avoid shell history exposure)")
	cmd.Flags().StringVar(&expiryFlag, "expires", "", "Token expiry timestamp (RFC 3339), recorded for early warnings")

	return cmd
}

// AuthStatus represents authentication status for JSON output.
type AuthStatus struct {
	Source  string `json:"source"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Expires string `json:"expires,omitempty"`
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Long: `Validate the stored credentials against the platform and show who you
are authenticated as, where the token came from, and when it expires.`,
		Example: `  lineup auth status
  lineup auth status --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			source, apiClient, err := newAPIClient()
			if err != nil {
				return err
			}

			spin := out.Spinner("Checking credentials")
			spin.Start()

			identity, err := apiClient.ValidateToken(cmd.Context())
			if err != nil {
				spin.StopWithFailure("Credentials invalid")
				return clierrors.AuthFailed(err)
			}

			spin.StopWithSuccess("Authenticated")

			cfg := config.Load()

			expires := ""
			if expiry := cfg.TokenExpiry(); !expiry.IsZero() {
				expires = expiry.Format(time.RFC3339)
			}

			if out.JSON {
				if err := out.PrintJSON(AuthStatus{
					Source:  string(source),
					Name:    identity.Name,
					Email:   identity.Email,
					Expires: expires,
				}); err != nil {
					return fmt.Errorf("print auth status json: %w", err)
				}

				return nil
			}

			out.Print("Source:  %s\n", source)
			out.Print("Name:    %s\n", identity.Name)
			out.Print("Email:   %s\n", identity.Email)

			if expires != "" {
				out.Print("Expires: %s\n", expires)
			}

			return nil
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		Short:   "Clear stored credentials",
		Long:    `Remove the access token from the system keyring and credential file.`,
		Example: `  lineup auth logout`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			if err := auth.DeleteToken(); err != nil {
				// If the token doesn't exist, that's fine
				if strings.Contains(err.Error(), "not found") {
					out.Muted("No stored credentials found")
					return nil
				}

				return clierrors.ConfigFailed("clear credentials", err)
			}

			out.Success("Logged out successfully")

			if os.Getenv("LINEUP_TOKEN") != "" {
				out.Println()
				out.Warning("LINEUP_TOKEN environment variable is still set")
			}

			return nil
		},
	}
}
