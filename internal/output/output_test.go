package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/lineup-dev/lineup/internal/terminal"
)

// newTestWriter returns a Writer backed by buffers with colors disabled.
func newTestWriter() (*Writer, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	term := &terminal.Info{IsTTY: false, NoColor: true}

	return NewWriter(out, errBuf, term), out, errBuf
}

func TestWriter_Print(t *testing.T) {
	w, out, _ := newTestWriter()

	w.Print("count: %d\n", 3)

	if got := out.String(); got != "count: 3\n" {
		t.Errorf("Print() output = %q, want %q", got, "count: 3\n")
	}
}

func TestWriter_QuietSuppressesStdout(t *testing.T) {
	w, out, errBuf := newTestWriter()
	w.Quiet = true

	w.Print("hidden\n")
	w.Println("also hidden")
	w.Success("hidden success")
	w.Warning("hidden warning")
	w.Info("hidden info")
	w.Muted("hidden muted")

	if out.Len() != 0 {
		t.Errorf("quiet mode wrote to stdout: %q", out.String())
	}

	// Failures always reach stderr, even in quiet mode.
	w.Failure("visible failure")

	if !strings.Contains(errBuf.String(), "visible failure") {
		t.Errorf("Failure() missing from stderr: %q", errBuf.String())
	}
}

func TestWriter_PrintJSON(t *testing.T) {
	w, out, _ := newTestWriter()

	payload := map[string]int{"assigned": 2}
	if err := w.PrintJSON(payload); err != nil {
		t.Fatalf("PrintJSON() error = %v", err)
	}

	var decoded map[string]int
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if decoded["assigned"] != 2 {
		t.Errorf("decoded[assigned] = %d, want 2", decoded["assigned"])
	}
}

func TestWriter_StatusMarks(t *testing.T) {
	tests := []struct {
		name     string
		write    func(w *Writer)
		wantMark string
		toStderr bool
	}{
		{
			name:     "success",
			write:    func(w *Writer) { w.Success("ok") },
			wantMark: CheckMark,
		},
		{
			name:     "failure",
			write:    func(w *Writer) { w.Failure("bad") },
			wantMark: XMark,
			toStderr: true,
		},
		{
			name:     "warning",
			write:    func(w *Writer) { w.Warning("careful") },
			wantMark: WarningMark,
		},
		{
			name:     "info",
			write:    func(w *Writer) { w.Info("fyi") },
			wantMark: InfoMark,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, out, errBuf := newTestWriter()
			tt.write(w)

			buf := out
			if tt.toStderr {
				buf = errBuf
			}

			if !strings.Contains(buf.String(), tt.wantMark) {
				t.Errorf("output %q missing mark %q", buf.String(), tt.wantMark)
			}
		})
	}
}

func TestWriter_Write_RespectsQuiet(t *testing.T) {
	w, out, _ := newTestWriter()
	w.Quiet = true

	n, err := w.Write([]byte("ignored"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if n != len("ignored") {
		t.Errorf("Write() n = %d, want %d", n, len("ignored"))
	}

	if out.Len() != 0 {
		t.Errorf("quiet Write() leaked output: %q", out.String())
	}
}

func TestSpinner_DisabledFallback(t *testing.T) {
	w, out, _ := newTestWriter()

	spin := w.Spinner("Connecting")
	spin.Start()
	spin.StopWithSuccess("Connected")

	got := out.String()
	if !strings.Contains(got, "Connecting... ") {
		t.Errorf("disabled spinner output = %q, want message prefix", got)
	}

	if !strings.Contains(got, "Connected") {
		t.Errorf("disabled spinner output = %q, want success message", got)
	}
}

func TestFromContext_Fallback(t *testing.T) {
	w, _, _ := newTestWriter()
	ctx := w.WithContext(t.Context())

	if got := FromContext(ctx); got != w {
		t.Error("FromContext should return the stored writer")
	}
}
