package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"xliff-manager/internal/config"
	"xliff-manager/internal/diagnostics"
	"xliff-manager/internal/domain"
	"xliff-manager/internal/jobs"
)

const defaultHistoryLimit = 20

func newPrefsCommand(e *env) *cobra.Command {
	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Inspect or change default preferences",
	}

	prefsCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print saved preferences",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				prefs, err := e.store.Load()
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), prefs)
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change one preference (srcLang, tgtLang, skeleton, catalog, srx, theme, appLang)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				prefs, err := e.store.Load()
				if err != nil {
					return err
				}
				if err := setPreference(&prefs, args[0], args[1]); err != nil {
					return err
				}
				if err := e.store.Save(prefs); err != nil {
					return fmt.Errorf("save preferences: %w", err)
				}
				saved, err := e.store.Load()
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), saved)
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Restore default preferences",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := e.store.Save(e.store.Defaults()); err != nil {
					return fmt.Errorf("save preferences: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), e.store.Defaults())
			},
		},
	)
	return prefsCmd
}

func setPreference(prefs *domain.Preferences, key, value string) error {
	switch key {
	case "srcLang":
		prefs.SrcLang = value
	case "tgtLang":
		prefs.TgtLang = value
	case "skeleton":
		prefs.Skeleton = value
	case "catalog":
		prefs.Catalog = value
	case "srx":
		prefs.SRX = value
	case "theme":
		if !config.IsTheme(value) {
			return fmt.Errorf("unknown theme %q (want one of %s)", value, strings.Join(config.Themes, ", "))
		}
		prefs.Theme = value
	case "appLang":
		prefs.AppLang = value
	default:
		return fmt.Errorf("unknown preference %q", key)
	}
	return nil
}

func newHistoryCommand(e *env) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect finished jobs",
	}

	var limit int
	var kind string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if kind != "" {
				if _, ok := jobs.SpecFor(domain.JobKind(kind)); !ok {
					return fmt.Errorf("unknown job kind %q", kind)
				}
			}
			records, err := e.history.Recent(limit, domain.JobKind(kind))
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			renderHistory(cmd.OutOrStdout(), records, time.Now())
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", defaultHistoryLimit, "Max entries to show")
	listCmd.Flags().StringVar(&kind, "kind", "", "Only show one job kind")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all history entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.history.Clear()
		},
	}

	historyCmd.AddCommand(listCmd, clearCmd)
	return historyCmd
}

func renderHistory(out io.Writer, records []domain.JobRecord, now time.Time) {
	if len(records) == 0 {
		writeLine(out, "No jobs recorded yet.")
		return
	}
	for _, rec := range records {
		line := fmt.Sprintf("%s | %-8s | %-9s | %8s | %s",
			humanize.RelTime(rec.FinishedAt, now, "ago", "from now"),
			rec.Kind,
			rec.State,
			rec.Duration().Round(time.Millisecond),
			rec.Input)
		if rec.Reason != "" {
			line += " | " + rec.Reason
		}
		writeLine(out, "%s", line)
	}
}

func newDoctorCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the installation and the configured paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := e.store.Load()
			if err != nil {
				return err
			}

			probe := func() bool { return e.supervisor.Reachable(cmd.Context()) }
			report := diagnostics.NewChecker(e.paths, probe).Run(prefs)

			out := cmd.OutOrStdout()
			for _, item := range report.Items {
				writeLine(out, "[%s] %s - %s", strings.ToUpper(string(item.Status)), item.Name, item.Message)
				if item.Hint != "" && item.Status == domain.DiagnosticStatusFail {
					writeLine(out, "       %s", item.Hint)
				}
			}
			if report.HasFailures {
				return fmt.Errorf("diagnostics found problems")
			}
			return nil
		},
	}
}
