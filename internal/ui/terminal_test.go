package ui

import (
	"bytes"
	"errors"
	"testing"
)

// TestTerminalRoutesMessagesAndErrors checks stream selection and formatting.
func TestTerminalRoutesMessagesAndErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	term := NewTerminal(&out, &errOut)

	if err := term.ShowMessage("", "Done"); err != nil {
		t.Fatalf("ShowMessage() error = %v", err)
	}
	if err := term.ShowError("Error", "engine down"); err != nil {
		t.Fatalf("ShowError() error = %v", err)
	}

	if got := out.String(); got != "Done\n" {
		t.Fatalf("out = %q, want %q", got, "Done\n")
	}
	if got := errOut.String(); got != "Error: engine down\n" {
		t.Fatalf("err = %q, want %q", got, "Error: engine down\n")
	}
}

// TestTerminalRejectsDialogs checks file dialogs fail instead of blocking.
func TestTerminalRejectsDialogs(t *testing.T) {
	term := NewTerminal(&bytes.Buffer{}, &bytes.Buffer{})
	if _, err := term.OpenFile(OpenOptions{}); !errors.Is(err, ErrNotInteractive) {
		t.Fatalf("OpenFile() error = %v, want %v", err, ErrNotInteractive)
	}
	if _, err := term.SaveFile(SaveOptions{}); !errors.Is(err, ErrNotInteractive) {
		t.Fatalf("SaveFile() error = %v, want %v", err, ErrNotInteractive)
	}
}
