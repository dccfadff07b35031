package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"xliff-manager/internal/jobs"
	"xliff-manager/internal/updates"
)

const (
	updateCheckTimeout   = 30 * time.Second
	progressReportPeriod = 250 * time.Millisecond
)

// CheckUpdates compares the running version with the published one.
// A newer release opens the updates view. A silent check never shows
// "no updates" or errors.
func (a *App) CheckUpdates(silent bool) {
	if a.Updates == nil {
		return
	}

	ctx, cancel := context.WithTimeout(a.lifetime, updateCheckTimeout)
	defer cancel()

	release, err := a.Updates.Check(ctx)
	if err != nil {
		a.logger.Warn("check updates", "error", err)
		if !silent {
			a.reportError(a.text("app", "checkUpdatesError"))
		}
		return
	}

	if !release.Available {
		if !silent {
			a.showMessage(a.text("app", "noUpdates"))
		}
		return
	}

	a.mu.Lock()
	a.release = release
	a.mu.Unlock()

	a.publishEvent(jobs.Event{
		Type:    jobs.EventShowUpdates,
		Message: a.text("app", "updateAvailable", release.Latest),
		Payload: map[string]any{
			"current":     release.Current,
			"latest":      release.Latest,
			"downloadUrl": release.DownloadURL,
		},
	})
}

// GetRelease returns the last release found by CheckUpdates.
func (a *App) GetRelease() updates.Release {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.release.Current == "" && a.Updates != nil {
		return updates.Release{Current: a.Updates.Current()}
	}
	return a.release
}

// DownloadLatest saves the installer of the last found release into the
// Downloads folder and reports progress on the status bar.
func (a *App) DownloadLatest() (string, error) {
	release := a.GetRelease()
	if !release.Available || release.DownloadURL == "" {
		return "", fmt.Errorf("no update available for this platform")
	}

	a.publishEvent(jobs.Event{Type: jobs.EventSetStatus, Message: a.text("app", "downloading")})

	var lastReport time.Time
	path, err := a.Updates.Download(a.lifetime, release.DownloadURL, a.downloadsDir, func(received, total int64) {
		if time.Since(lastReport) < progressReportPeriod {
			return
		}
		lastReport = time.Now()

		size := "?"
		if total > 0 {
			size = humanize.Bytes(uint64(total))
		}
		a.publishEvent(jobs.Event{
			Type:    jobs.EventSetStatus,
			Message: a.text("app", "downloaded", humanize.Bytes(uint64(received)), size),
		})
	})
	a.publishEvent(jobs.Event{Type: jobs.EventSetStatus})
	if err != nil {
		a.reportError(err.Error())
		return "", fmt.Errorf("download update: %w", err)
	}

	a.showMessage(a.text("app", "downloadComplete", path))
	return path, nil
}
