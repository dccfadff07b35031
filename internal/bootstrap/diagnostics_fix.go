package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"xliff-manager/internal/diagnostics"
	"xliff-manager/internal/domain"
)

const engineFixTimeout = 30 * time.Second

// FixDiagnostic applies the remediation for one failed diagnostic item and
// returns the refreshed report.
func (a *App) FixDiagnostic(itemID string) (domain.DiagnosticReport, error) {
	if a.Store == nil {
		return domain.DiagnosticReport{}, fmt.Errorf("preferences store is not configured")
	}

	id := strings.TrimSpace(itemID)
	if id == "" {
		return domain.DiagnosticReport{}, fmt.Errorf("diagnostic item id is required")
	}

	prefs, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load preferences: %w", err)
	}

	prefsChanged := false
	var fixErr error

	switch id {
	case diagnostics.IDCatalog:
		prefs.Catalog = a.Paths.CatalogFile()
		prefsChanged = true
	case diagnostics.IDSRX:
		prefs.SRX = a.Paths.SRXFile()
		prefsChanged = true
	case diagnostics.IDSkeleton:
		prefs, prefsChanged, fixErr = a.fixSkeletonDir(prefs)
	case diagnostics.IDEngine:
		fixErr = a.fixEngine()
	default:
		return domain.DiagnosticReport{}, fmt.Errorf("unsupported diagnostic item id: %s", id)
	}

	if prefsChanged {
		if saveErr := a.Store.Save(prefs); saveErr != nil {
			report := a.refreshDiagnosticsFromPreferences(prefs)
			return report, fmt.Errorf("save preferences after fix: %w", saveErr)
		}
	}

	report := a.refreshDiagnosticsFromPreferences(prefs)
	if fixErr != nil {
		return report, fixErr
	}
	return report, nil
}

// fixSkeletonDir creates the configured folder, or falls back to the default one.
func (a *App) fixSkeletonDir(prefs domain.Preferences) (domain.Preferences, bool, error) {
	dir := strings.TrimSpace(prefs.Skeleton)
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err == nil {
			return prefs, false, nil
		}
	}

	fallback := a.Paths.SkeletonDir()
	if err := os.MkdirAll(fallback, 0o755); err != nil {
		return prefs, false, fmt.Errorf("create skeleton folder: %w", err)
	}
	prefs.Skeleton = fallback
	return prefs, true, nil
}

// fixEngine spawns the engine if it never started and waits for it to answer.
func (a *App) fixEngine() error {
	if a.Supervisor == nil {
		return fmt.Errorf("engine supervisor is not configured")
	}
	if err := a.Supervisor.Start(); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}

	ctx, cancel := context.WithTimeout(a.lifetime, engineFixTimeout)
	defer cancel()
	if err := a.Supervisor.WaitReady(ctx); err != nil {
		return fmt.Errorf("wait for engine: %w", err)
	}
	return nil
}
