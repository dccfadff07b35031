package diagnostics

import (
	"os"
	"path/filepath"
	"testing"

	"xliff-manager/internal/config"
	"xliff-manager/internal/domain"
)

// installFixture lays out a minimal installation folder.
func installFixture(t *testing.T) config.Paths {
	t.Helper()
	root := t.TempDir()
	paths := config.Paths{
		ConfigDir: filepath.Join(root, "config"),
		AppDir:    filepath.Join(root, "app"),
	}

	files := []string{
		paths.JavaBinary(),
		filepath.Join(paths.EngineLibDir(), "openxliff.jar"),
		paths.CatalogFile(),
		paths.SRXFile(),
	}
	for _, file := range files {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", file, err)
		}
		if err := os.WriteFile(file, []byte("stub"), 0o755); err != nil {
			t.Fatalf("write %s: %v", file, err)
		}
	}
	return paths
}

// TestCheckerRunAllPass validates happy-path diagnostics report.
func TestCheckerRunAllPass(t *testing.T) {
	paths := installFixture(t)
	checker := NewCheckerForTests(paths, func() bool { return true },
		os.Stat, os.ReadDir, os.MkdirAll, os.CreateTemp, os.Remove)

	report := checker.Run(config.DefaultPreferences(paths))
	if report.HasFailures {
		t.Fatalf("expected no failures, got %+v", report.Items)
	}
	assertStatusByID(t, report, IDEngine, domain.DiagnosticStatusPass)
}

// TestCheckerRunMissingInstallation validates failure reporting.
func TestCheckerRunMissingInstallation(t *testing.T) {
	root := t.TempDir()
	paths := config.Paths{ConfigDir: filepath.Join(root, "config"), AppDir: filepath.Join(root, "missing")}
	checker := NewCheckerForTests(paths, func() bool { return false },
		os.Stat, os.ReadDir, os.MkdirAll, os.CreateTemp, os.Remove)

	report := checker.Run(domain.Preferences{
		Catalog:  filepath.Join(root, "nope.xml"),
		SRX:      "",
		Skeleton: "",
	})

	if !report.HasFailures {
		t.Fatal("expected failures")
	}
	assertStatusByID(t, report, IDJavaRuntime, domain.DiagnosticStatusFail)
	assertStatusByID(t, report, IDEngineLib, domain.DiagnosticStatusFail)
	assertStatusByID(t, report, IDEngine, domain.DiagnosticStatusFail)
	assertStatusByID(t, report, IDCatalog, domain.DiagnosticStatusFail)
	assertStatusByID(t, report, IDSRX, domain.DiagnosticStatusFail)
	assertStatusByID(t, report, IDSkeleton, domain.DiagnosticStatusFail)

	item, _ := report.Item(IDCatalog)
	if !item.Fixable {
		t.Fatal("catalog failure should be fixable")
	}
}

// TestCheckerLibWithoutJarsFails validates module folder check.
func TestCheckerLibWithoutJarsFails(t *testing.T) {
	paths := installFixture(t)
	if err := os.Remove(filepath.Join(paths.EngineLibDir(), "openxliff.jar")); err != nil {
		t.Fatalf("remove jar: %v", err)
	}
	if err := os.WriteFile(filepath.Join(paths.EngineLibDir(), "README.txt"), []byte("no jars"), 0o644); err != nil {
		t.Fatalf("write readme: %v", err)
	}

	checker := NewCheckerForTests(paths, nil, os.Stat, os.ReadDir, os.MkdirAll, os.CreateTemp, os.Remove)
	report := checker.Run(config.DefaultPreferences(paths))

	assertStatusByID(t, report, IDEngineLib, domain.DiagnosticStatusFail)
	if _, ok := report.Item(IDEngine); ok {
		t.Fatal("engine check should be skipped without a probe")
	}
}

// assertStatusByID checks status for one diagnostic item by ID.
func assertStatusByID(t *testing.T, report domain.DiagnosticReport, id string, want domain.DiagnosticStatus) {
	t.Helper()
	item, ok := report.Item(id)
	if !ok {
		t.Fatalf("diagnostic item not found: %s", id)
	}
	if item.Status != want {
		t.Fatalf("item %s: got %s, want %s", id, item.Status, want)
	}
}
