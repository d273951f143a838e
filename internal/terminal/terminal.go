// Package terminal provides terminal detection and capabilities.
//
// This package handles:
//   - TTY detection for stdout/stderr
//   - NO_COLOR environment variable support
//   - Terminal dimensions
package terminal

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"
)

// Info holds terminal capability information.
type Info struct {
	IsTTY     bool
	NoColor   bool
	Width     int
	Height    int
	ForceFlag bool // Set when --no-color flag is used
}

// Detect returns terminal information for the current environment.
func Detect() *Info {
	stdoutFD := int(os.Stdout.Fd())
	isTTY := term.IsTerminal(stdoutFD)

	width, height := 80, 24 // sensible defaults

	if isTTY {
		if w, h, err := term.GetSize(stdoutFD); err == nil {
			width, height = w, h
		}
	}

	// Check NO_COLOR environment variable (https://no-color.org/)
	_, noColor := os.LookupEnv("NO_COLOR")

	// Treat TERM=dumb as no-color (terminals that don't support escape sequences)
	if os.Getenv("TERM") == "dumb" {
		noColor = true
	}

	return &Info{
		IsTTY:   isTTY,
		NoColor: noColor,
		Width:   width,
		Height:  height,
	}
}

// ColorEnabled returns true if colored output should be used.
func (t *Info) ColorEnabled() bool {
	if t.ForceFlag {
		return false
	}

	return t.IsTTY && !t.NoColor
}

// InteractiveEnabled returns true if interactive prompts are allowed.
func (t *Info) InteractiveEnabled() bool {
	return t.IsTTY
}

// SpinnersEnabled returns true if spinners should be used.
func (t *Info) SpinnersEnabled() bool {
	return t.IsTTY && !t.NoColor
}

// RawKeyReader reports whether stdin can be switched into raw mode for
// single-key input (the watch loop's suspend key).
func RawKeyReader() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// RawKeys switches stdin into raw mode and streams single bytes on the
// returned channel until the context is canceled or stdin closes. The
// restore function must be called before the process exits; raw mode also
// swallows Ctrl+C, which arrives as byte 0x03 on the channel.
func RawKeys(ctx context.Context) (<-chan byte, func() error, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, nil, fmt.Errorf("stdin is not a terminal")
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, nil, fmt.Errorf("enable raw mode: %w", err)
	}

	keys := make(chan byte)

	go func() {
		defer close(keys)

		buf := make([]byte, 1)

		for {
			n, readErr := os.Stdin.Read(buf)
			if readErr != nil {
				return
			}

			if n == 0 {
				continue
			}

			select {
			case keys <- buf[0]:
			case <-ctx.Done():
				return
			}
		}
	}()

	restore := func() error {
		return term.Restore(fd, oldState)
	}

	return keys, restore, nil
}
