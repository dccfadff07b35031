package diagnostics

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"xliff-manager/internal/config"
	"xliff-manager/internal/domain"
)

// Check ids reported by Run.
const (
	IDJavaRuntime = "java_runtime"
	IDEngineLib   = "engine_lib"
	IDEngine      = "engine"
	IDCatalog     = "catalog"
	IDSRX         = "srx"
	IDSkeleton    = "skeleton_dir"
)

// Checker validates the bundled engine runtime and the configured paths.
type Checker struct {
	paths      config.Paths
	probe      func() bool
	stat       func(string) (os.FileInfo, error)
	readDir    func(string) ([]os.DirEntry, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
// probe reports whether the engine answers; nil skips the check.
func NewChecker(paths config.Paths, probe func() bool) *Checker {
	return &Checker{
		paths:      paths,
		probe:      probe,
		stat:       os.Stat,
		readDir:    os.ReadDir,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all checks and returns a combined report.
func (c *Checker) Run(prefs domain.Preferences) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkJavaRuntime(),
		c.checkEngineLib(),
	}
	if c.probe != nil {
		items = append(items, c.checkEngine())
	}
	items = append(items,
		c.checkFile(IDCatalog, "XML catalog", prefs.Catalog, "Select a catalog.xml file in Preferences or reset it to the bundled catalog."),
		c.checkFile(IDSRX, "SRX rules", prefs.SRX, "Select an SRX file in Preferences or reset it to the bundled rules."),
		c.checkSkeletonDir(prefs.Skeleton),
	)

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkJavaRuntime verifies the bundled Java runtime exists.
func (c *Checker) checkJavaRuntime() domain.DiagnosticItem {
	item := domain.DiagnosticItem{ID: IDJavaRuntime, Name: "Java runtime"}
	path := c.paths.JavaBinary()

	info, err := c.stat(path)
	if err != nil || info.IsDir() {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Java runtime not found: %s", path)
		item.Hint = fmt.Sprintf("Reinstall the application or set %s to the installation folder.", config.HomeEnv)
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Found at %s", path)
	return item
}

// checkEngineLib verifies the module path holds the engine jars.
func (c *Checker) checkEngineLib() domain.DiagnosticItem {
	item := domain.DiagnosticItem{ID: IDEngineLib, Name: "Engine modules"}
	dir := c.paths.EngineLibDir()

	entries, err := c.readDir(dir)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		if errors.Is(err, fs.ErrNotExist) {
			item.Message = fmt.Sprintf("Module folder does not exist: %s", dir)
		} else {
			item.Message = fmt.Sprintf("Cannot read module folder: %s", dir)
		}
		item.Hint = "Reinstall the application to restore the engine modules."
		return item
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".jar") {
			item.Status = domain.DiagnosticStatusPass
			item.Message = fmt.Sprintf("Module folder is valid: %s", dir)
			return item
		}
	}

	item.Status = domain.DiagnosticStatusFail
	item.Message = fmt.Sprintf("No .jar modules found in %s", dir)
	item.Hint = "Reinstall the application to restore the engine modules."
	return item
}

// checkEngine reports whether the engine endpoint answers.
func (c *Checker) checkEngine() domain.DiagnosticItem {
	item := domain.DiagnosticItem{ID: IDEngine, Name: "Conversion engine"}
	if c.probe() {
		item.Status = domain.DiagnosticStatusPass
		item.Message = "Engine is answering on localhost."
		return item
	}

	item.Status = domain.DiagnosticStatusFail
	item.Message = "Engine is not answering on localhost."
	item.Hint = "Restart the engine; check that port 8000 is not used by another program."
	item.Fixable = true
	return item
}

// checkFile validates that a configured file exists.
func (c *Checker) checkFile(id, name, path, hint string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{ID: id, Name: name}

	if strings.TrimSpace(path) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("%s path is empty.", name)
		item.Hint = hint
		item.Fixable = true
		return item
	}

	info, err := c.stat(path)
	if err != nil || info.IsDir() {
		item.Status = domain.DiagnosticStatusFail
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			item.Message = fmt.Sprintf("Cannot access %s", path)
		} else {
			item.Message = fmt.Sprintf("File does not exist: %s", path)
		}
		item.Hint = hint
		item.Fixable = true
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Found %s", path)
	return item
}

// checkSkeletonDir validates skeleton folder existence and write access.
func (c *Checker) checkSkeletonDir(dir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:      IDSkeleton,
		Name:    "Skeleton folder",
		Fixable: true,
	}

	if strings.TrimSpace(dir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Skeleton folder is empty."
		item.Hint = "Set a folder where skeleton files can be written."
		return item
	}

	if err := c.mkdirAll(dir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create skeleton folder: %s", dir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(dir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Skeleton folder is not writable: %s", dir)
		item.Hint = "Choose a writable folder for skeleton files."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable folder: %s", dir)
	item.Fixable = false
	return item
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	paths config.Paths,
	probe func() bool,
	stat func(string) (os.FileInfo, error),
	readDir func(string) ([]os.DirEntry, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		paths:      paths,
		probe:      probe,
		stat:       stat,
		readDir:    readDir,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}
