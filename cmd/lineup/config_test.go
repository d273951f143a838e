package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/lineup-dev/lineup/internal/output"
	"github.com/lineup-dev/lineup/internal/terminal"
	"github.com/lineup-dev/lineup/internal/testutil"
)

func testWriter() (*output.Writer, *bytes.Buffer) {
	var buf bytes.Buffer

	term := &terminal.Info{IsTTY: false, NoColor: true, Width: 80, Height: 24}

	return output.NewWriter(&buf, &buf, term), &buf
}

func TestConfigGet_FromEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("LINEUP_API_URL", "https://custom.api.dev")

	out, buf := testWriter()
	cmd := newConfigGetCmd()
	cmd.SetArgs([]string{"api.url"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetContext(out.WithContext(t.Context()))

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config get should succeed: %v", err)
	}

	if !strings.Contains(buf.String(), "https://custom.api.dev") {
		t.Errorf("expected env-provided URL in output, got: %q", buf.String())
	}
}

func TestConfigGet_Default_Golden(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("LINEUP_API_URL", "")

	out, buf := testWriter()
	cmd := newConfigGetCmd()
	cmd.SetArgs([]string{"api.url"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetContext(out.WithContext(t.Context()))

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config get should succeed: %v", err)
	}

	testutil.AssertGolden(t, buf.String(), "config_get_default.golden")
}

func TestConfigGet_Unset_Golden(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	out, buf := testWriter()
	cmd := newConfigGetCmd()
	cmd.SetArgs([]string{"custom.key"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetContext(out.WithContext(t.Context()))

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config get should succeed for unset key: %v", err)
	}

	testutil.AssertGolden(t, buf.String(), "config_get_unset.golden")
}

func TestConfigSetThenGet(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	out, buf := testWriter()
	set := newConfigSetCmd()
	set.SetArgs([]string{"watch.interval", "45"})
	set.SetOut(io.Discard)
	set.SetErr(io.Discard)
	set.SetContext(out.WithContext(t.Context()))

	if err := set.Execute(); err != nil {
		t.Fatalf("config set should succeed: %v", err)
	}

	testutil.AssertGolden(t, buf.String(), "config_set.golden")

	out2, buf2 := testWriter()
	get := newConfigGetCmd()
	get.SetArgs([]string{"watch.interval"})
	get.SetOut(io.Discard)
	get.SetErr(io.Discard)
	get.SetContext(out2.WithContext(t.Context()))

	if err := get.Execute(); err != nil {
		t.Fatalf("config get should succeed after set: %v", err)
	}

	if !strings.Contains(buf2.String(), "watch.interval = 45") {
		t.Errorf("expected persisted value in output, got: %q", buf2.String())
	}
}

func TestConfigList_ShowsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	out, buf := testWriter()
	cmd := newConfigListCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetContext(out.WithContext(t.Context()))

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config list should succeed: %v", err)
	}

	// Defaults always surface under their top-level sections.
	for _, want := range []string{"api", "watch"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q section in output, got: %q", want, buf.String())
		}
	}
}
