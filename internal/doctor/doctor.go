// Package doctor provides diagnostic checks for Lineup CLI health.
//
// This package implements a check framework that validates:
//   - API connectivity and response time
//   - Authentication status and credential source
//   - Project and language configuration
//   - Push notification setup
//   - CLI version against latest release
package doctor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lineup-dev/lineup/internal/auth"
	"github.com/lineup-dev/lineup/internal/buildinfo"
	"github.com/lineup-dev/lineup/internal/client"
	"github.com/lineup-dev/lineup/internal/config"
	"github.com/lineup-dev/lineup/internal/notify"
	"github.com/lineup-dev/lineup/internal/update"
)

// Status represents the result of a diagnostic check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical failure.
	StatusFail
)

// Result holds the outcome of a single check.
type Result struct {
	Name    string
	Status  Status
	Message string
	Detail  string // Optional additional detail
}

// Check is a diagnostic check function.
type Check func(ctx context.Context) Result

// Runner executes diagnostic checks.
type Runner struct {
	checks []namedCheck
}

type namedCheck struct {
	name  string
	check Check
}

// New creates a new diagnostic runner.
func New() *Runner {
	r := &Runner{}

	// Register default checks
	r.AddCheck("API Connectivity", checkAPIConnectivity)
	r.AddCheck("Authentication", checkAuthentication)
	r.AddCheck("Projects", checkProjects)
	r.AddCheck("Push Setup", checkPushSetup)
	r.AddCheck("CLI Version", checkCLIVersion)

	return r
}

// AddCheck registers a diagnostic check.
func (r *Runner) AddCheck(name string, check Check) {
	r.checks = append(r.checks, namedCheck{name: name, check: check})
}

// Run executes all registered checks and returns the results.
func (r *Runner) Run(ctx context.Context) []Result {
	results := make([]Result, 0, len(r.checks))

	for _, nc := range r.checks {
		result := nc.check(ctx)
		result.Name = nc.name
		results = append(results, result)
	}

	return results
}

// Summary returns counts of passed, failed, and warning checks.
func Summary(results []Result) (passed, failed, warnings int) {
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			passed++
		case StatusFail:
			failed++
		case StatusWarn:
			warnings++
		}
	}

	return passed, failed, warnings
}

// checkAPIConnectivity tests connection to the API endpoint.
func checkAPIConnectivity(ctx context.Context) Result {
	cfg := config.Load()
	apiURL := cfg.APIURL()

	start := time.Now()

	// We expect this to fail auth with a throwaway token, but succeed at
	// connecting.
	c := client.New("connectivity-probe").WithBaseURL(apiURL)

	_, err := c.ValidateToken(ctx)
	elapsed := time.Since(start)

	// An auth error means connectivity works
	if err != nil && strings.Contains(err.Error(), "invalid") {
		return Result{
			Status:  StatusPass,
			Message: fmt.Sprintf("%s (%dms)", apiURL, elapsed.Milliseconds()),
		}
	}

	if err != nil {
		return Result{
			Status:  StatusFail,
			Message: apiURL,
			Detail:  err.Error(),
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s (%dms)", apiURL, elapsed.Milliseconds()),
	}
}

// checkAuthentication validates stored credentials.
func checkAuthentication(ctx context.Context) Result {
	source, token := auth.GetCredentials()

	if token == "" {
		return Result{
			Status:  StatusFail,
			Message: "Not authenticated",
			Detail:  "Run 'lineup auth login' to authenticate",
		}
	}

	cfg := config.Load()

	if expiry := cfg.TokenExpiry(); !expiry.IsZero() && expiry.Before(time.Now()) {
		return Result{
			Status:  StatusFail,
			Message: fmt.Sprintf("Token expired %s (via %s)", expiry.Format(time.RFC3339), source),
			Detail:  "Run 'lineup auth login' with a fresh token",
		}
	}

	c := client.New(token).WithBaseURL(cfg.APIURL())

	identity, err := c.ValidateToken(ctx)
	if err != nil {
		return Result{
			Status:  StatusFail,
			Message: fmt.Sprintf("Invalid credentials (via %s)", source),
			Detail:  err.Error(),
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s (via %s)", identity.Name, source),
	}
}

// checkProjects validates the certified-project and language configuration.
func checkProjects(ctx context.Context) Result {
	cfg := config.Load()

	certified := cfg.CertifiedProjects()
	if len(certified) == 0 {
		return Result{
			Status:  StatusFail,
			Message: "No certified projects configured",
			Detail:  "Set 'projects.certified' in the config file",
		}
	}

	requested, uncertified := config.ResolveRequestedProjects(cfg.RequestedProjects(), certified)
	if len(uncertified) > 0 {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%d certified, but requested project(s) not certified: %s", len(certified), strings.Join(uncertified, ", ")),
			Detail:  "Fix 'projects.requested' or pass --projects explicitly",
		}
	}

	if len(cfg.Languages()) == 0 {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%d certified, no languages configured", len(certified)),
			Detail:  "Set 'projects.languages' to request language-specific work",
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("%d certified, %d requested, languages %v", len(certified), len(requested), cfg.Languages()),
	}
}

// checkPushSetup validates the push notification configuration.
func checkPushSetup(ctx context.Context) Result {
	cfg := config.Load()

	token := cfg.PushAccessToken()
	if token == "" {
		return Result{
			Status:  StatusWarn,
			Message: "No push access token configured",
			Detail:  "Set 'push.access_token' to enable 'lineup watch --push'",
		}
	}

	push := notify.NewPush(token)

	devices, err := push.ListDevices(ctx)
	if err != nil {
		return Result{
			Status:  StatusFail,
			Message: "Push provider unreachable or token invalid",
			Detail:  err.Error(),
		}
	}

	if len(devices) == 0 {
		return Result{
			Status:  StatusWarn,
			Message: "Push token valid but no registered device",
			Detail:  "Register a device with your push provider",
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("%d registered device(s)", len(devices)),
	}
}

// checkCLIVersion checks the CLI version against the latest release.
func checkCLIVersion(ctx context.Context) Result {
	current := buildinfo.Version

	if current == "dev" {
		return Result{
			Status:  StatusWarn,
			Message: "Development build (version check skipped)",
		}
	}

	if update.IsDisabled() {
		return Result{
			Status:  StatusPass,
			Message: fmt.Sprintf("v%s (update checks disabled)", current),
		}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	updater, err := update.NewUpdater()
	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("v%s (could not check for updates)", current),
			Detail:  err.Error(),
		}
	}

	info, err := updater.CheckLatest(checkCtx, current)
	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("v%s (could not check for updates)", current),
			Detail:  err.Error(),
		}
	}

	if info.UpdateAvailable {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("v%s (v%s available)", current, info.LatestVersion),
			Detail:  "Run 'lineup update' to update",
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("v%s (latest)", current),
	}
}

// Symbol returns the status symbol for display.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return checkMark
	case StatusWarn:
		return warningMark
	case StatusFail:
		return xMark
	default:
		return "?"
	}
}

const (
	checkMark   = "✓" // ✓
	xMark       = "✗" // ✗
	warningMark = "⚠" // ⚠
)
