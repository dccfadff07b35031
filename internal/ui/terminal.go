package ui

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrNotInteractive is returned by dialogs a terminal cannot show.
var ErrNotInteractive = errors.New("file dialogs are not available in the terminal; pass the path as an argument")

// Terminal prints messages and errors as lines.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

// NewTerminal writes messages to out and errors to errOut.
func NewTerminal(out, errOut io.Writer) *Terminal {
	return &Terminal{out: out, err: errOut}
}

func (t *Terminal) OpenFile(OpenOptions) (string, error) { return "", ErrNotInteractive }
func (t *Terminal) SaveFile(SaveOptions) (string, error) { return "", ErrNotInteractive }

func (t *Terminal) ShowMessage(title, message string) error {
	return t.print(t.out, title, message)
}

func (t *Terminal) ShowError(title, message string) error {
	return t.print(t.err, title, message)
}

func (t *Terminal) print(w io.Writer, title, message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if title == "" {
		_, err := fmt.Fprintln(w, message)
		return err
	}
	_, err := fmt.Fprintf(w, "%s: %s\n", title, message)
	return err
}
