package updates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"time"
)

// DefaultManifestURL publishes the latest version and per-platform installers.
const DefaultManifestURL = "https://maxprograms.com/xliffmanager.json"

const (
	manifestTimeout = 30 * time.Second
	downloadTimeout = 30 * time.Minute
	userAgent       = "xliff-manager"
)

// Manifest is the remote release descriptor.
type Manifest struct {
	Version string `json:"version"`
	Darwin  string `json:"darwin"`
	Arm64   string `json:"arm64,omitempty"`
	Win32   string `json:"win32"`
	Linux   string `json:"linux"`
}

// Link returns the installer URL for a platform, or "" when none is published.
func (m Manifest) Link(goos, goarch string) string {
	switch goos {
	case "darwin":
		if goarch == "arm64" && m.Arm64 != "" {
			return m.Arm64
		}
		return m.Darwin
	case "windows":
		return m.Win32
	case "linux":
		return m.Linux
	default:
		return ""
	}
}

// Release is the outcome of one update check.
type Release struct {
	Current     string `json:"current"`
	Latest      string `json:"latest"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	Available   bool   `json:"available"`
}

// Checker compares the running version with the published manifest.
type Checker struct {
	manifestURL string
	current     string
	client      *http.Client
	goos        string
	goarch      string
}

// NewChecker creates a checker for the running platform.
func NewChecker(manifestURL, current string) *Checker {
	return NewCheckerForTests(manifestURL, current, nil, goruntime.GOOS, goruntime.GOARCH)
}

// NewCheckerForTests creates a checker with an injectable client and platform.
func NewCheckerForTests(manifestURL, current string, client *http.Client, goos, goarch string) *Checker {
	if manifestURL == "" {
		manifestURL = DefaultManifestURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Checker{
		manifestURL: manifestURL,
		current:     current,
		client:      client,
		goos:        goos,
		goarch:      goarch,
	}
}

// Current returns the running version.
func (c *Checker) Current() string {
	return c.current
}

// Check fetches the manifest. Any version string different from the running one is an update.
func (c *Checker) Check(ctx context.Context) (Release, error) {
	manifest, err := c.fetchManifest(ctx)
	if err != nil {
		return Release{}, err
	}

	release := Release{
		Current: c.current,
		Latest:  manifest.Version,
	}
	if manifest.Version != c.current {
		release.Available = true
		release.DownloadURL = manifest.Link(c.goos, c.goarch)
	}
	return release, nil
}

func (c *Checker) fetchManifest(ctx context.Context) (Manifest, error) {
	ctx, cancel := context.WithTimeout(ctx, manifestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.manifestURL, nil)
	if err != nil {
		return Manifest{}, fmt.Errorf("build manifest request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return Manifest{}, fmt.Errorf("request manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Manifest{}, fmt.Errorf("manifest request returned %s", resp.Status)
	}

	var manifest Manifest
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if strings.TrimSpace(manifest.Version) == "" {
		return Manifest{}, fmt.Errorf("manifest did not include a version")
	}
	return manifest, nil
}

// Progress receives bytes written so far and the expected total (-1 when unknown).
type Progress func(received, total int64)

// Download saves sourceURL into dir under its URL base name and returns the file path.
// An existing file with the same name is replaced.
func (c *Checker) Download(ctx context.Context, sourceURL, dir string, progress Progress) (string, error) {
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return "", fmt.Errorf("parse download url: %w", err)
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("download url has no file name: %s", sourceURL)
	}

	destination := filepath.Join(dir, name)
	if err := c.downloadToFile(ctx, destination, sourceURL, progress); err != nil {
		return "", err
	}
	return destination, nil
}

func (c *Checker) downloadToFile(ctx context.Context, destinationPath, sourceURL string, progress Progress) error {
	if err := os.MkdirAll(filepath.Dir(destinationPath), 0o755); err != nil {
		return fmt.Errorf("prepare destination directory: %w", err)
	}

	tmpPath := destinationPath + ".download"
	if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale temp file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status: %s", resp.Status)
	}

	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}

	var dst io.Writer = file
	if progress != nil {
		dst = &progressWriter{w: file, total: resp.ContentLength, report: progress}
	}
	_, copyErr := io.Copy(dst, resp.Body)
	closeErr := file.Close()
	if copyErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write destination file: %w", copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close destination file: %w", closeErr)
	}

	if err := os.Remove(destinationPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("remove old destination file: %w", err)
	}
	if err := os.Rename(tmpPath, destinationPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("move downloaded file into place: %w", err)
	}

	return nil
}

type progressWriter struct {
	w        io.Writer
	total    int64
	received int64
	report   Progress
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.received += int64(n)
	p.report(p.received, p.total)
	return n, err
}
