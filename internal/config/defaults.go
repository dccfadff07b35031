package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"xliff-manager/internal/domain"
)

// Version is the released application version, set with -ldflags at build time.
var Version = "7.0.0"

// AppName is the per-user configuration folder name.
const AppName = "XLIFF Manager"

// HomeEnv overrides the installation directory holding the engine runtime.
const HomeEnv = "XLIFFMANAGER_HOME"

const (
	// LanguageNone marks an unset source or target language.
	LanguageNone = "none"
	// DefaultAppLang is the UI language used on first launch.
	DefaultAppLang = "en"
)

// Paths locates per-user files and the installation directory.
type Paths struct {
	ConfigDir string
	AppDir    string
}

// ResolvePaths derives paths from the user config dir and executable location.
func ResolvePaths() (Paths, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("resolve user config dir: %w", err)
	}

	appDir := strings.TrimSpace(os.Getenv(HomeEnv))
	if appDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return Paths{}, fmt.Errorf("resolve executable: %w", err)
		}
		appDir = filepath.Dir(exe)
	}

	return Paths{
		ConfigDir: filepath.Join(base, AppName),
		AppDir:    appDir,
	}, nil
}

func (p Paths) PreferencesFile() string { return filepath.Join(p.ConfigDir, "defaults.json") }
func (p Paths) PositionFile() string { return filepath.Join(p.ConfigDir, "position.json") }
func (p Paths) HistoryFile() string { return filepath.Join(p.ConfigDir, "history.db") }
func (p Paths) SkeletonDir() string { return filepath.Join(p.ConfigDir, "skl") }
func (p Paths) CatalogFile() string { return filepath.Join(p.AppDir, "catalog", "catalog.xml") }
func (p Paths) SRXFile() string { return filepath.Join(p.AppDir, "srx", "default.srx") }
func (p Paths) EngineLibDir() string { return filepath.Join(p.AppDir, "lib") }

// JavaBinary is the bundled runtime used to launch the engine.
func (p Paths) JavaBinary() string {
	name := "java"
	if filepath.Separator == '\\' {
		name = "java.exe"
	}
	return filepath.Join(p.AppDir, "bin", name)
}

// DefaultPreferences returns the baseline record written on first launch.
func DefaultPreferences(p Paths) domain.Preferences {
	return domain.Preferences{
		SrcLang:  LanguageNone,
		TgtLang:  LanguageNone,
		Skeleton: p.SkeletonDir(),
		Catalog:  p.CatalogFile(),
		SRX:      p.SRXFile(),
		Theme:    ThemeSystem,
		AppLang:  DefaultAppLang,
	}
}
