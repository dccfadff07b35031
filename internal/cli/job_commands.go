package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"xliff-manager/internal/domain"
	"xliff-manager/internal/engine"
	"xliff-manager/internal/jobs"
)

func newConvertCommand(e *env) *cobra.Command {
	var opts engine.ConvertOptions

	cmd := &cobra.Command{
		Use:   "convert <source>",
		Short: "Create an XLIFF file from a source document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := e.store.Load()
			if err != nil {
				return fmt.Errorf("load preferences: %w", err)
			}

			opts.File = args[0]
			if opts.Xliff == "" {
				opts.Xliff = args[0] + ".xlf"
			}
			opts.SrcLang = fallback(opts.SrcLang, prefs.SrcLang)
			opts.TgtLang = fallback(opts.TgtLang, prefs.TgtLang)
			opts.Skeleton = fallback(opts.Skeleton, prefs.Skeleton)
			opts.Catalog = fallback(opts.Catalog, prefs.Catalog)
			opts.SRX = fallback(opts.SRX, prefs.SRX)

			if opts.Type == "" || opts.Enc == "" {
				ft, err := e.client.FileType(cmd.Context(), opts.File)
				if err != nil {
					return fmt.Errorf("detect file type: %w", err)
				}
				opts.Type = fallback(opts.Type, ft.Type)
				opts.Enc = fallback(opts.Enc, ft.Encoding)
			}
			return runJob(cmd, e, domain.JobKindConvert, opts.File, opts.Request())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Xliff, "output", "o", "", "XLIFF file to create (default <source>.xlf)")
	flags.StringVarP(&opts.SrcLang, "source-lang", "s", "", "Source language (default from preferences)")
	flags.StringVarP(&opts.TgtLang, "target-lang", "t", "", "Target language (default from preferences)")
	flags.StringVar(&opts.Type, "type", "", "Source format (detected when empty)")
	flags.StringVar(&opts.Enc, "encoding", "", "Source encoding (detected when empty)")
	flags.StringVar(&opts.Skeleton, "skeleton", "", "Skeleton folder")
	flags.StringVar(&opts.Catalog, "catalog", "", "XML catalog")
	flags.StringVar(&opts.SRX, "srx", "", "Segmentation rules")
	flags.StringVar(&opts.Ditaval, "ditaval", "", "DITAVAL filter for DITA maps")
	flags.StringVar(&opts.Config, "config", "", "Filter configuration file")
	flags.BoolVar(&opts.Is20, "xliff2", false, "Generate XLIFF 2.0")
	flags.BoolVar(&opts.Paragraph, "paragraph", false, "Use paragraph segmentation")
	flags.BoolVar(&opts.Embed, "embed", false, "Embed the skeleton in the XLIFF file")
	return cmd
}

func newMergeCommand(e *env) *cobra.Command {
	var opts engine.MergeOptions

	cmd := &cobra.Command{
		Use:   "merge <xliff>",
		Short: "Rebuild the translated document from an XLIFF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := e.store.Load()
			if err != nil {
				return fmt.Errorf("load preferences: %w", err)
			}

			opts.Xliff = args[0]
			opts.Catalog = fallback(opts.Catalog, prefs.Catalog)
			if opts.Target == "" {
				target, err := e.client.TargetFile(cmd.Context(), opts.Xliff)
				if err != nil {
					return fmt.Errorf("get target file: %w", err)
				}
				opts.Target = target
			}
			return runJob(cmd, e, domain.JobKindMerge, opts.Xliff, opts.Request())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Target, "target", "o", "", "Translated document to write (suggested by the engine when empty)")
	flags.StringVar(&opts.Catalog, "catalog", "", "XML catalog")
	flags.BoolVar(&opts.Unapproved, "unapproved", false, "Accept unapproved translations")
	flags.BoolVar(&opts.ExportTMX, "tmx", false, "Export approved translations as TMX")
	return cmd
}

func newValidateCommand(e *env) *cobra.Command {
	return newFileJobCommand(e, "validate <xliff>", "Validate an XLIFF file", domain.JobKindValidate, engine.CommandValidate)
}

func newAnalyseCommand(e *env) *cobra.Command {
	return newFileJobCommand(e, "analyse <xliff>", "Produce word count and status reports", domain.JobKindAnalyse, engine.CommandAnalyse)
}

func newFileJobCommand(e *env, use, short string, kind domain.JobKind, command string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := e.store.Load()
			if err != nil {
				return fmt.Errorf("load preferences: %w", err)
			}
			return runJob(cmd, e, kind, args[0], engine.FileRequest(command, args[0], prefs.Catalog))
		},
	}
}

func newTaskCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "task <" + strings.Join(jobs.TaskCommands, "|") + "> <xliff>",
		Short: "Apply a translation task to an XLIFF file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !jobs.IsTaskCommand(args[0]) {
				return fmt.Errorf("unsupported task %q", args[0])
			}
			prefs, err := e.store.Load()
			if err != nil {
				return fmt.Errorf("load preferences: %w", err)
			}
			return runJob(cmd, e, domain.JobKindTask, args[1], engine.FileRequest(args[0], args[1], prefs.Catalog))
		},
	}
}

// runJob submits req, waits for the terminal state, records it and prints the result.
func runJob(cmd *cobra.Command, e *env, kind domain.JobKind, input string, req engine.Request) error {
	ctx := cmd.Context()
	spec, _ := jobs.SpecFor(kind)
	startedAt := time.Now().UTC()

	job, err := e.poller.Start(ctx, kind, req)
	if err != nil {
		e.record(kind, "", input, startedAt, err)
		return err
	}
	e.logger.Debug("job running", "kind", kind, "process", job.ID())

	result, err := job.Wait(ctx)
	if err == nil {
		err = engine.ResultError(spec.ResultCommand, result)
	}
	e.record(kind, job.ID(), input, startedAt, err)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func (e *env) record(kind domain.JobKind, processID, input string, startedAt time.Time, jobErr error) {
	record := domain.JobRecord{
		Kind:       kind,
		ProcessID:  processID,
		Input:      input,
		State:      domain.JobStateCompleted,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
	}
	if jobErr != nil {
		record.State = domain.JobStateFailed
		record.Reason = jobErr.Error()
	}
	if _, err := e.history.Save(record); err != nil {
		e.logger.Warn("save job history", "kind", kind, "error", err)
	}
}

func printJSON(out io.Writer, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	writeLine(out, "%s", data)
	return nil
}

func fallback(value, def string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return def
}
