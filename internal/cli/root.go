package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"xliff-manager/internal/config"
	"xliff-manager/internal/engine"
	"xliff-manager/internal/history"
	"xliff-manager/internal/jobs"
	"xliff-manager/internal/ui"
	"xliff-manager/internal/updates"
)

// Options holds CLI-level configuration shared by every command.
type Options struct {
	Endpoint    string
	AppDir      string
	ConfigDir   string
	ManifestURL string
	Spawn       bool
	Verbose     bool
	Interval    time.Duration
}

// env is the per-invocation set of collaborators built from Options.
type env struct {
	opts       *Options
	paths      config.Paths
	store      *config.JSONStore
	client     *engine.Client
	poller     *jobs.Poller
	supervisor *engine.Supervisor
	history    *history.SQLiteStore
	updates    *updates.Checker
	presenter  ui.Presenter
	logger     *slog.Logger
	spawned    bool
}

// Execute runs the command line with args and releases the engine and the
// history database even when the command fails.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root, e := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if closeErr := e.close(ctx); err == nil {
		err = closeErr
	}
	return err
}

// newRootCmd wires the cobra root command.
func newRootCmd() (*cobra.Command, *env) {
	opts := &Options{}
	e := &env{opts: opts}

	root := &cobra.Command{
		Use:           "xliffctl",
		Short:         "Create, merge, validate and analyse XLIFF files",
		Long:          "xliffctl drives the XLIFF Manager conversion engine from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.open(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.Endpoint, "endpoint", engine.DefaultEndpoint, "Engine command URL")
	flags.StringVar(&opts.AppDir, "app-dir", "", "Installation folder holding the engine (default from "+config.HomeEnv+")")
	flags.StringVar(&opts.ConfigDir, "config-dir", "", "Folder holding preferences and history")
	flags.StringVar(&opts.ManifestURL, "manifest", updates.DefaultManifestURL, "Release manifest URL")
	flags.BoolVar(&opts.Spawn, "spawn", false, "Start the bundled engine for this command and stop it afterwards")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug logging")
	flags.DurationVar(&opts.Interval, "interval", jobs.DefaultInterval, "Delay between job status requests")

	root.AddCommand(
		newConvertCommand(e),
		newMergeCommand(e),
		newValidateCommand(e),
		newAnalyseCommand(e),
		newTaskCommand(e),
		newFileTypeCommand(e),
		newTargetCommand(e),
		newListCommand(e, "languages", "List source and target languages", func(c *engine.Client) listFunc { return c.Languages }),
		newListCommand(e, "charsets", "List source file encodings", func(c *engine.Client) listFunc { return c.Charsets }),
		newListCommand(e, "types", "List supported source formats", func(c *engine.Client) listFunc { return c.Types }),
		newVersionCommand(e),
		newCheckUpdateCommand(e),
		newPrefsCommand(e),
		newHistoryCommand(e),
		newDoctorCommand(e),
	)
	return root, e
}

// open resolves paths and builds the collaborators for one invocation.
func (e *env) open(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if e.opts.Verbose {
		level = slog.LevelDebug
	}
	e.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	paths, err := config.ResolvePaths()
	if err != nil {
		return fmt.Errorf("resolve paths: %w", err)
	}
	if e.opts.AppDir != "" {
		paths.AppDir = e.opts.AppDir
	}
	if e.opts.ConfigDir != "" {
		paths.ConfigDir = e.opts.ConfigDir
	}
	e.paths = paths

	e.store = config.NewJSONStore(paths.PreferencesFile(), config.DefaultPreferences(paths))
	prefs, err := e.store.Load()
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}

	e.client = engine.NewClient(e.opts.Endpoint, engine.WithLogger(e.logger))
	e.poller = jobs.NewPoller(e.client, e.opts.Interval, e.logger)
	e.updates = updates.NewChecker(e.opts.ManifestURL, config.Version)
	e.presenter = ui.NewTerminal(cmd.OutOrStdout(), cmd.ErrOrStderr())
	e.supervisor = engine.NewSupervisor(engine.SupervisorConfig{
		JavaPath: paths.JavaBinary(),
		AppDir:   paths.AppDir,
		Lang:     prefs.AppLang,
		Endpoint: e.opts.Endpoint,
	}, e.logger)

	e.history, err = history.Open(paths.HistoryFile())
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	if e.opts.Spawn {
		if err := e.supervisor.Start(); err != nil {
			return err
		}
		e.spawned = true
		if err := e.supervisor.WaitReady(cmd.Context()); err != nil {
			return fmt.Errorf("wait for engine: %w", err)
		}
	}
	return nil
}

// close is safe to call when open failed or never ran.
func (e *env) close(ctx context.Context) error {
	if e.spawned {
		e.spawned = false
		if err := e.supervisor.Stop(ctx); err != nil {
			e.logger.Warn("stop engine", "error", err)
		}
	}
	if e.history == nil {
		return nil
	}
	err := e.history.Close()
	e.history = nil
	return err
}

func writeLine(out io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(out, format+"\n", args...)
}
