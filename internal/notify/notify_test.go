package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLocalNotify(t *testing.T) {
	var gotTitle, gotMessage string
	var gotSound bool

	out := &bytes.Buffer{}
	local := &Local{
		Out: out,
		send: func(title, message string, sound bool) error {
			gotTitle, gotMessage, gotSound = title, message, sound
			return nil
		},
	}

	err := local.Notify(context.Background(), Notification{
		Title:   "New assignment",
		Message: "Alpha",
		Sound:   true,
		Link:    "https://lineup.dev/assignments/a1",
	})
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if gotTitle != "New assignment" || gotMessage != "Alpha" || !gotSound {
		t.Errorf("send called with (%q, %q, %v)", gotTitle, gotMessage, gotSound)
	}

	if !strings.Contains(out.String(), "https://lineup.dev/assignments/a1") {
		t.Errorf("link not printed, out = %q", out.String())
	}
}

func TestLocalNotify_NoLink(t *testing.T) {
	out := &bytes.Buffer{}
	local := &Local{
		Out:  out,
		send: func(_, _ string, _ bool) error { return nil },
	}

	if err := local.Notify(context.Background(), Notification{Title: "t"}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if out.Len() != 0 {
		t.Errorf("out = %q, want empty when no link", out.String())
	}
}

func TestLocalNotify_SendError(t *testing.T) {
	local := &Local{
		send: func(_, _ string, _ bool) error { return errors.New("dbus unavailable") },
	}

	if err := local.Notify(context.Background(), Notification{Title: "t"}); err == nil {
		t.Fatal("Notify() should surface send errors")
	}
}
