package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"xliff-manager/internal/config"
	"xliff-manager/internal/diagnostics"
	"xliff-manager/internal/domain"
	"xliff-manager/internal/engine"
	"xliff-manager/internal/history"
	"xliff-manager/internal/i18n"
	"xliff-manager/internal/jobs"
	"xliff-manager/internal/ui"
	"xliff-manager/internal/updates"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

const (
	defaultWidth       = 900
	defaultHeight      = 640
	enginePort         = 8000
	updateCheckDelay   = 2 * time.Second
	boundsSaveDebounce = 500 * time.Millisecond
	historyLimit       = 50
)

// engineSupervisor is the lifecycle surface App needs from the engine child.
type engineSupervisor interface {
	Start() error
	WaitReady(ctx context.Context) error
	Reachable(ctx context.Context) bool
	Stop(ctx context.Context) error
}

// updateChecker isolates the remote release manifest behind an interface.
type updateChecker interface {
	Current() string
	Check(ctx context.Context) (updates.Release, error)
	Download(ctx context.Context, url, dir string, progress updates.Progress) (string, error)
}

// App wires preferences, the engine, job polling and UI runtime callbacks.
type App struct {
	Paths       config.Paths
	Store       config.Store
	Geometry    *config.GeometryStore
	Jobs        *jobs.Manager
	Engine      *engine.Client
	Supervisor  engineSupervisor
	Poller      *jobs.Poller
	Presenter   ui.Presenter
	Updates     updateChecker
	History     history.Store
	Catalog     *i18n.Catalog
	Diagnostics domain.DiagnosticReport

	assets       fs.FS
	checker      *diagnostics.Checker
	events       *jobs.EventBus
	logger       *slog.Logger
	downloadsDir string
	debounced    func(func())
	awaiting     sync.WaitGroup

	mu         sync.Mutex
	prefs      domain.Preferences
	startLang  string
	release    updates.Release
	bounds     domain.Bounds
	runtimeCtx context.Context
	lifetime   context.Context
	cancel     context.CancelFunc
}

// New builds the application with persisted preferences and a started engine.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	logger := slog.Default()

	paths, err := config.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}

	store := config.NewJSONStore(paths.PreferencesFile(), config.DefaultPreferences(paths))
	prefs, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	catalog, err := i18n.Load()
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	historyStore, err := history.Open(paths.HistoryFile())
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	client := engine.NewClient(engine.DefaultEndpoint, engine.WithLogger(logger))
	supervisor := engine.NewSupervisor(engine.SupervisorConfig{
		JavaPath: paths.JavaBinary(),
		AppDir:   paths.AppDir,
		Port:     enginePort,
		Lang:     prefs.AppLang,
		Endpoint: engine.DefaultEndpoint,
	}, logger)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}

	app := newApp(appDeps{
		paths:        paths,
		store:        store,
		client:       client,
		supervisor:   supervisor,
		updates:      updates.NewChecker(updates.DefaultManifestURL, config.Version),
		history:      historyStore,
		catalog:      catalog,
		assets:       assets,
		logger:       logger,
		downloadsDir: filepath.Join(homeDir, "Downloads"),
		interval:     jobs.DefaultInterval,
	})
	app.prefs = prefs
	app.startLang = prefs.AppLang
	app.Presenter = &wailsPresenter{ctx: app.runtimeContext}
	app.checker = diagnostics.NewChecker(paths, app.engineReachable)

	// A failed spawn keeps the window usable; engine calls then fail as transport errors.
	if err := supervisor.Start(); err == nil {
		go func() {
			if err := supervisor.WaitReady(app.lifetime); err != nil {
				logger.Warn("engine not ready", "error", err)
			}
		}()
	}

	app.Diagnostics = app.checker.Run(prefs)
	return app, nil
}

// appDeps collects the collaborators shared by production and test construction.
type appDeps struct {
	paths        config.Paths
	store        config.Store
	client       *engine.Client
	supervisor   engineSupervisor
	updates      updateChecker
	history      history.Store
	catalog      *i18n.Catalog
	presenter    ui.Presenter
	assets       fs.FS
	logger       *slog.Logger
	downloadsDir string
	interval     time.Duration
}

func newApp(deps appDeps) *App {
	logger := deps.logger
	if logger == nil {
		logger = slog.Default()
	}
	lifetime, cancel := context.WithCancel(context.Background())

	return &App{
		Paths:        deps.paths,
		Store:        deps.store,
		Geometry:     config.NewGeometryStore(deps.paths.PositionFile()),
		Jobs:         jobs.NewManager(),
		Engine:       deps.client,
		Supervisor:   deps.supervisor,
		Poller:       jobs.NewPoller(deps.client, deps.interval, logger),
		Presenter:    deps.presenter,
		Updates:      deps.updates,
		History:      deps.history,
		Catalog:      deps.catalog,
		assets:       deps.assets,
		events:       jobs.NewEventBus(1000),
		logger:       logger.With("component", "app"),
		downloadsDir: deps.downloadsDir,
		debounced:    debounce.New(boundsSaveDebounce),
		lifetime:     lifetime,
		cancel:       cancel,
	}
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:         config.AppName,
		Width:         defaultWidth,
		Height:        defaultHeight,
		AssetServer:   assetOptions,
		Menu:          a.buildMenu(),
		OnStartup:     a.Startup,
		OnBeforeClose: a.beforeClose,
		OnShutdown:    a.Shutdown,
		Bind:          []interface{}{a},
	})
}

// Startup stores the Wails runtime context, restores the window and schedules a silent update check.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	a.runtimeCtx = ctx
	a.mu.Unlock()

	a.restoreBounds(ctx)

	go func() {
		select {
		case <-time.After(updateCheckDelay):
			a.CheckUpdates(true)
		case <-a.lifetime.Done():
		}
	}()
}

// Shutdown stops polling, the engine and the history database.
// Cancelled jobs are recorded before the database closes, unless ctx ends first.
func (a *App) Shutdown(ctx context.Context) {
	a.cancel()
	a.waitForJobs(ctx)

	a.mu.Lock()
	a.runtimeCtx = nil
	a.mu.Unlock()

	if a.Supervisor != nil {
		if err := a.Supervisor.Stop(ctx); err != nil {
			a.logger.Warn("stop engine", "error", err)
		}
	}
	if closer, ok := a.History.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("close history", "error", err)
		}
	}
}

func (a *App) waitForJobs(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		a.awaiting.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.logger.Warn("jobs still finishing at shutdown", "error", ctx.Err())
	}
}

// GetPreferences loads and returns the latest persisted preferences.
func (a *App) GetPreferences() (domain.Preferences, error) {
	prefs, err := a.Store.Load()
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}

	a.mu.Lock()
	a.prefs = prefs
	a.mu.Unlock()

	return prefs, nil
}

// SavePreferences persists preferences, reloads them and refreshes diagnostics.
// Changing the UI language after startup asks for a restart.
func (a *App) SavePreferences(prefs domain.Preferences) (domain.Preferences, error) {
	if err := a.Store.Save(prefs); err != nil {
		return domain.Preferences{}, fmt.Errorf("save preferences: %w", err)
	}
	saved, err := a.Store.Load()
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("reload preferences: %w", err)
	}

	a.mu.Lock()
	a.prefs = saved
	restart := a.startLang != "" && saved.AppLang != a.startLang
	a.mu.Unlock()

	a.refreshDiagnosticsFromPreferences(saved)
	a.publishEvent(jobs.Event{Type: jobs.EventSetStatus, Message: a.text("app", "savedPreferences")})

	if restart {
		a.showMessage(a.text("app", "restartRequired"))
	}
	return saved, nil
}

// GetTheme returns the stylesheet for the saved theme.
func (a *App) GetTheme(prefersDark, highContrast bool) string {
	prefs := a.preferences()
	return config.Stylesheet(prefs.Theme, prefersDark, highContrast)
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// RefreshDiagnostics reloads preferences and reruns installation checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	prefs, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load preferences: %w", err)
	}
	return a.refreshDiagnosticsFromPreferences(prefs), nil
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// ActiveJobs returns the jobs still waiting for the engine.
func (a *App) ActiveJobs() []domain.Job {
	return a.Jobs.Active()
}

// RecentJobs lists finished jobs, newest first; an empty kind lists all kinds.
func (a *App) RecentJobs(kind string) ([]domain.JobRecord, error) {
	if a.History == nil {
		return nil, nil
	}
	records, err := a.History.Recent(historyLimit, domain.JobKind(kind))
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return records, nil
}

// ShowFile reveals path in the platform file manager.
func (a *App) ShowFile(path string) error {
	target := strings.TrimSpace(path)
	if target == "" {
		return fmt.Errorf("file path is empty")
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("resolve file path: %w", err)
	}

	openPath := target
	if !info.IsDir() {
		openPath = filepath.Dir(target)
	}
	return openInFileManager(openPath)
}

func (a *App) refreshDiagnosticsFromPreferences(prefs domain.Preferences) domain.DiagnosticReport {
	var report domain.DiagnosticReport
	if a.checker != nil {
		report = a.checker.Run(prefs)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.prefs = prefs
	if a.checker != nil {
		a.Diagnostics = report
	}
	return a.Diagnostics
}

// engineReachable probes the engine for diagnostics.
func (a *App) engineReachable() bool {
	if a.Supervisor == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(a.lifetime, 2*time.Second)
	defer cancel()
	return a.Supervisor.Reachable(ctx)
}

// publishStatus sends a status bar update; an empty message clears it.
func (a *App) publishStatus(kind domain.JobKind, message string) {
	a.publishEvent(jobs.Event{
		Type:    jobs.EventSetStatus,
		Kind:    kind,
		Message: message,
	})
}

// publishEvent stores event history and emits runtime push notifications on the event's channel.
func (a *App) publishEvent(event jobs.Event) jobs.Event {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, string(published.Type), published)
	}
	return published
}

// reportError delivers one failure as a show-error event and one error dialog.
func (a *App) reportError(message string) {
	title := a.text("app", "error")
	a.publishEvent(jobs.Event{Type: jobs.EventShowError, Title: title, Message: message})
	if a.Presenter != nil {
		if err := a.Presenter.ShowError(title, message); err != nil {
			a.logger.Debug("error dialog", "error", err)
		}
	}
}

// showMessage delivers one notice as a show-message event and one dialog.
func (a *App) showMessage(message string) {
	title := config.AppName
	a.publishEvent(jobs.Event{Type: jobs.EventShowMessage, Title: title, Message: message})
	if a.Presenter != nil {
		if err := a.Presenter.ShowMessage(title, message); err != nil {
			a.logger.Debug("message dialog", "error", err)
		}
	}
}

// preferences returns the cached preferences.
func (a *App) preferences() domain.Preferences {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.prefs
}

// text looks up a UI string in the language the application started with.
func (a *App) text(section, key string, args ...any) string {
	a.mu.Lock()
	lang := a.startLang
	a.mu.Unlock()

	var loc i18n.Localizer
	if a.Catalog != nil {
		loc = a.Catalog.Localizer(lang)
	}
	if len(args) == 0 {
		return loc.Get(section, key)
	}
	return loc.Format(section, key, args...)
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, errRuntimeNotReady
	}
	return a.runtimeCtx, nil
}

var errRuntimeNotReady = errors.New("runtime context is not initialized")

// openInFileManager launches the platform file explorer for the provided path.
func openInFileManager(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch file manager: %w", err)
	}
	return nil
}
