package bootstrap

import (
	"fmt"
	"path/filepath"
	"strings"

	"xliff-manager/internal/domain"
	"xliff-manager/internal/engine"
	"xliff-manager/internal/ui"
)

// File purposes accepted by SelectFile.
const (
	PurposeDitaval  = "ditaval"
	PurposeConfig   = "config"
	PurposeSRX      = "srx"
	PurposeCatalog  = "catalog"
	PurposeSkeleton = "skeleton"
)

var anyFile = domain.FileFormat{Name: "Any File", Extensions: []string{"*"}}

// sourceFormats lists every document type the engine can extract.
var sourceFormats = []domain.FileFormat{
	anyFile,
	{Name: "Adobe InCopy ICML", Extensions: []string{"icml"}},
	{Name: "Adobe InDesign Interchange", Extensions: []string{"inx"}},
	{Name: "Adobe InDesign IDML", Extensions: []string{"idml"}},
	{Name: "DITA Map", Extensions: []string{"ditamap", "dita", "xml"}},
	{Name: "HTML Page", Extensions: []string{"html", "htm"}},
	{Name: "JavaScript", Extensions: []string{"js"}},
	{Name: "Java Properties", Extensions: []string{"properties"}},
	{Name: "JSON", Extensions: []string{"json"}},
	{Name: "MIF (Maker Interchange Format)", Extensions: []string{"mif"}},
	{Name: "Microsoft Office 2007 Document", Extensions: []string{"docx", "xlsx", "pptx"}},
	{Name: "OpenOffice 1.x Document", Extensions: []string{"sxw", "sxc", "sxi", "sxd"}},
	{Name: "OpenOffice 2.x Document", Extensions: []string{"odt", "ods", "odp", "odg"}},
	{Name: "Plain Text", Extensions: []string{"txt"}},
	{Name: "PO (Portable Objects)", Extensions: []string{"po", "pot"}},
	{Name: "RC (Windows C/C++ Resources)", Extensions: []string{"rc"}},
	{Name: "ResX (Windows .NET Resources)", Extensions: []string{"resx"}},
	{Name: "SDLXLIFF Document", Extensions: []string{"sdlxliff"}},
	{Name: "SRT Subtitle", Extensions: []string{"srt"}},
	{Name: "SVG (Scalable Vector Graphics)", Extensions: []string{"svg"}},
	{Name: "Trados Studio Package", Extensions: []string{"sdlppx"}},
	{Name: "Qt Linguist TS", Extensions: []string{"ts"}},
	{Name: "TXML Document", Extensions: []string{"txml"}},
	{Name: "Visio XML Drawing", Extensions: []string{"vsdx"}},
	{Name: "Wordfast/GlobalLink XLIFF", Extensions: []string{"txlf"}},
	{Name: "XLIFF Document", Extensions: []string{"xlf", "xliff", "mqxliff", "txlf"}},
	{Name: "XML Document", Extensions: []string{"xml"}},
}

var (
	xliffFormats   = []domain.FileFormat{{Name: "XLIFF File", Extensions: []string{"xlf"}}, anyFile}
	ditavalFormats = []domain.FileFormat{{Name: "DITAVAL File", Extensions: []string{"ditaval"}}, anyFile}
	configFormats  = []domain.FileFormat{{Name: "JSON File", Extensions: []string{"json"}}, anyFile}
	srxFormats     = []domain.FileFormat{{Name: "SRX File", Extensions: []string{"srx"}}, anyFile}
	catalogFormats = []domain.FileFormat{{Name: "XML File", Extensions: []string{"xml"}}, anyFile}
)

// SelectSourceFile asks for a document to convert and detects its format.
// A cancelled dialog returns an empty FileType.
func (a *App) SelectSourceFile() (engine.FileType, error) {
	path, err := a.open(ui.OpenOptions{
		Title:   a.text("dialogs", "selectSource"),
		Filters: sourceFormats,
	})
	if err != nil || path == "" {
		return engine.FileType{}, err
	}

	ft, err := a.GetFileType(path)
	if err != nil {
		a.logger.Warn("detect file type", "file", path, "error", err)
		return engine.FileType{File: path}, nil
	}
	ft.File = path
	return ft, nil
}

// SelectXliffFile asks for an XLIFF file to merge, validate, analyse or process.
func (a *App) SelectXliffFile() (string, error) {
	return a.open(ui.OpenOptions{
		Title:   a.text("dialogs", "selectXliff"),
		Filters: xliffFormats,
	})
}

// SelectTargetFile asks where the merged document goes, starting from the engine's suggestion.
func (a *App) SelectTargetFile(xliff string) (string, error) {
	opts := ui.SaveOptions{Title: a.text("dialogs", "selectTarget")}
	if strings.TrimSpace(xliff) != "" {
		if suggested, err := a.GetTargetFile(xliff); err == nil && suggested != "" {
			opts.DefaultPath = filepath.Dir(suggested)
			opts.DefaultFilename = filepath.Base(suggested)
		}
	}
	if a.Presenter == nil {
		return "", errRuntimeNotReady
	}
	return a.Presenter.SaveFile(opts)
}

// SelectFile asks for one of the auxiliary files used by conversions and preferences.
func (a *App) SelectFile(purpose string) (string, error) {
	opts, err := a.openOptionsFor(purpose)
	if err != nil {
		return "", err
	}
	return a.open(opts)
}

func (a *App) openOptionsFor(purpose string) (ui.OpenOptions, error) {
	prefs := a.preferences()
	switch purpose {
	case PurposeDitaval:
		return ui.OpenOptions{Title: a.text("dialogs", "selectDitaval"), Filters: ditavalFormats}, nil
	case PurposeConfig:
		return ui.OpenOptions{Title: a.text("dialogs", "selectConfig"), Filters: configFormats}, nil
	case PurposeSRX:
		return ui.OpenOptions{Title: a.text("dialogs", "selectSrx"), Filters: srxFormats, DefaultPath: filepath.Dir(prefs.SRX)}, nil
	case PurposeCatalog:
		return ui.OpenOptions{Title: a.text("dialogs", "selectCatalog"), Filters: catalogFormats, DefaultPath: filepath.Dir(prefs.Catalog)}, nil
	case PurposeSkeleton:
		return ui.OpenOptions{Title: a.text("dialogs", "selectSkeleton"), Directory: true, DefaultPath: prefs.Skeleton}, nil
	default:
		return ui.OpenOptions{}, fmt.Errorf("unsupported file purpose %q", purpose)
	}
}

func (a *App) open(opts ui.OpenOptions) (string, error) {
	if a.Presenter == nil {
		return "", errRuntimeNotReady
	}
	path, err := a.Presenter.OpenFile(opts)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(path), nil
}
