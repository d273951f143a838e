package main

import (
	"github.com/lineup-dev/lineup/internal/auth"
	"github.com/lineup-dev/lineup/internal/client"
	"github.com/lineup-dev/lineup/internal/config"
	clierrors "github.com/lineup-dev/lineup/internal/errors"
)

// newAPIClient resolves credentials and builds an API client, reporting
// where the token came from.
func newAPIClient() (auth.CredentialSource, *client.Client, error) {
	source, token := auth.GetCredentials()
	if token == "" {
		return auth.SourceNone, nil, clierrors.NotAuthenticated()
	}

	cfg := config.Load()

	return source, client.New(token).WithBaseURL(cfg.APIURL()), nil
}
