package bootstrap

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"xliff-manager/internal/domain"
	"xliff-manager/internal/ui"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// wailsPresenter shows native dialogs through the Wails runtime.
type wailsPresenter struct {
	ctx func() (context.Context, error)
}

func (p *wailsPresenter) OpenFile(opts ui.OpenOptions) (string, error) {
	ctx, err := p.ctx()
	if err != nil {
		return "", err
	}

	dialog := wailsruntime.OpenDialogOptions{
		Title:            opts.Title,
		DefaultDirectory: opts.DefaultPath,
		Filters:          fileFilters(opts.Filters),
	}
	if opts.Directory {
		dialog.CanCreateDirectories = true
		return wailsruntime.OpenDirectoryDialog(ctx, dialog)
	}
	return wailsruntime.OpenFileDialog(ctx, dialog)
}

func (p *wailsPresenter) SaveFile(opts ui.SaveOptions) (string, error) {
	ctx, err := p.ctx()
	if err != nil {
		return "", err
	}

	return wailsruntime.SaveFileDialog(ctx, wailsruntime.SaveDialogOptions{
		Title:                opts.Title,
		DefaultDirectory:     opts.DefaultPath,
		DefaultFilename:      opts.DefaultFilename,
		Filters:              fileFilters(opts.Filters),
		CanCreateDirectories: true,
	})
}

func (p *wailsPresenter) ShowMessage(title, message string) error {
	return p.message(wailsruntime.InfoDialog, title, message)
}

func (p *wailsPresenter) ShowError(title, message string) error {
	return p.message(wailsruntime.ErrorDialog, title, message)
}

func (p *wailsPresenter) message(kind wailsruntime.DialogType, title, message string) error {
	ctx, err := p.ctx()
	if err != nil {
		return err
	}
	_, err = wailsruntime.MessageDialog(ctx, wailsruntime.MessageDialogOptions{
		Type:    kind,
		Title:   title,
		Message: message,
	})
	return err
}

// fileFilters converts format lists into "*.a;*.b" dialog patterns.
func fileFilters(formats []domain.FileFormat) []wailsruntime.FileFilter {
	return lo.Map(formats, func(format domain.FileFormat, _ int) wailsruntime.FileFilter {
		patterns := lo.Map(format.Extensions, func(ext string, _ int) string {
			if ext == "*" {
				return "*"
			}
			return "*." + strings.TrimPrefix(ext, ".")
		})
		return wailsruntime.FileFilter{
			DisplayName: format.Name,
			Pattern:     strings.Join(patterns, ";"),
		}
	})
}
