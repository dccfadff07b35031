package ui

import "xliff-manager/internal/domain"

// OpenOptions configures a file or folder selection dialog.
type OpenOptions struct {
	Title       string
	DefaultPath string
	Filters     []domain.FileFormat
	Directory   bool
}

// SaveOptions configures a save-as dialog.
type SaveOptions struct {
	Title           string
	DefaultPath     string
	DefaultFilename string
	Filters         []domain.FileFormat
}

// Presenter is everything the application needs from its user interface.
// A cancelled dialog returns an empty path and a nil error.
type Presenter interface {
	OpenFile(opts OpenOptions) (string, error)
	SaveFile(opts SaveOptions) (string, error)
	ShowMessage(title, message string) error
	ShowError(title, message string) error
}
