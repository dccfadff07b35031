package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"xliff-manager/internal/config"
	"xliff-manager/internal/domain"
	"xliff-manager/internal/engine"
	"xliff-manager/internal/jobs"
)

const queryTimeout = 30 * time.Second

// Convert creates an XLIFF file. Skeleton folder, catalog and SRX rules
// default to the saved preferences.
func (a *App) Convert(opts engine.ConvertOptions) (domain.Job, error) {
	prefs := a.preferences()
	opts.Skeleton = firstNonEmpty(opts.Skeleton, prefs.Skeleton)
	opts.Catalog = firstNonEmpty(opts.Catalog, prefs.Catalog)
	opts.SRX = firstNonEmpty(opts.SRX, prefs.SRX)
	return a.startJob(domain.JobKindConvert, opts.File, opts.Request())
}

// Merge rebuilds the translated document from an XLIFF file.
func (a *App) Merge(opts engine.MergeOptions) (domain.Job, error) {
	opts.Catalog = firstNonEmpty(opts.Catalog, a.preferences().Catalog)
	return a.startJob(domain.JobKindMerge, opts.Xliff, opts.Request())
}

// Validate checks an XLIFF file against its schema.
func (a *App) Validate(file string) (domain.Job, error) {
	req := engine.FileRequest(engine.CommandValidate, file, a.preferences().Catalog)
	return a.startJob(domain.JobKindValidate, file, req)
}

// Analyse produces word count and translation status reports for an XLIFF file.
func (a *App) Analyse(file string) (domain.Job, error) {
	req := engine.FileRequest(engine.CommandAnalyse, file, a.preferences().Catalog)
	return a.startJob(domain.JobKindAnalyse, file, req)
}

// RunTask applies one translation task (copy sources, pseudo-translate,
// remove targets, approve all) to an XLIFF file.
func (a *App) RunTask(command, file string) (domain.Job, error) {
	if !jobs.IsTaskCommand(command) {
		return domain.Job{}, fmt.Errorf("unsupported task %q", command)
	}
	req := engine.FileRequest(command, file, a.preferences().Catalog)
	return a.startJob(domain.JobKindTask, file, req)
}

// startJob reserves kind, submits req and hands the job to a watcher goroutine.
// A second start of an active kind returns jobs.ErrJobAlreadyRunning without
// contacting the engine. A rejected submit is reported once through
// reportError and the failed job is returned without an error.
func (a *App) startJob(kind domain.JobKind, input string, req engine.Request) (domain.Job, error) {
	spec, ok := jobs.SpecFor(kind)
	if !ok {
		return domain.Job{}, fmt.Errorf("unknown job kind %q", kind)
	}
	if err := a.Jobs.Begin(kind); err != nil {
		return domain.Job{}, err
	}

	a.publishStatus(kind, a.text("jobs", string(kind)))

	startedAt := time.Now().UTC()
	job, err := a.Poller.Start(a.lifetime, kind, req)
	if err != nil {
		a.finishJob(kind, "", input, startedAt, err)
		snapshot, _ := a.Jobs.Get(kind)
		return snapshot, nil
	}

	if err := a.Jobs.Running(kind, job.ID()); err != nil {
		a.logger.Warn("job transition", "kind", kind, "error", err)
	}
	a.awaiting.Add(1)
	go a.awaitJob(job, spec, input)

	return job.Snapshot(), nil
}

// awaitJob waits for the poller and publishes the completion or the failure.
func (a *App) awaitJob(job *jobs.Job, spec jobs.Spec, input string) {
	defer a.awaiting.Done()
	<-job.Done()

	result, err := job.Result()
	if err == nil {
		err = engine.ResultError(spec.ResultCommand, result)
	}
	a.finishJob(job.Kind(), job.ID(), input, job.StartedAt(), err)
	if err != nil {
		return
	}

	a.publishEvent(jobs.Event{
		Type:      spec.Completed,
		Kind:      job.Kind(),
		ProcessID: job.ID(),
		State:     domain.JobStateCompleted,
		Message:   a.text("jobs", "completed"),
		Payload:   result,
	})
}

// finishJob records the terminal state, clears the status bar and reports failures.
func (a *App) finishJob(kind domain.JobKind, processID, input string, startedAt time.Time, jobErr error) {
	state := domain.JobStateCompleted
	reason := ""
	if jobErr != nil {
		state = domain.JobStateFailed
		reason = jobErr.Error()
	}

	if err := a.Jobs.Finish(kind, state, reason); err != nil {
		a.logger.Warn("job transition", "kind", kind, "error", err)
	}
	a.publishStatus(kind, "")
	a.recordJob(domain.JobRecord{
		Kind:       kind,
		ProcessID:  processID,
		Input:      input,
		State:      state,
		Reason:     reason,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
	})

	if jobErr != nil && !errors.Is(jobErr, context.Canceled) {
		a.reportError(reason)
	}
}

func (a *App) recordJob(record domain.JobRecord) {
	if a.History == nil {
		return
	}
	if _, err := a.History.Save(record); err != nil {
		a.logger.Warn("save job history", "kind", record.Kind, "error", err)
	}
}

// GetFileType detects the format and encoding of a source file.
func (a *App) GetFileType(file string) (engine.FileType, error) {
	ctx, cancel := a.queryContext()
	defer cancel()
	ft, err := a.Engine.FileType(ctx, file)
	if err != nil {
		return engine.FileType{}, fmt.Errorf("detect file type: %w", err)
	}
	return ft, nil
}

// GetTargetFile suggests where a merged document should be written.
func (a *App) GetTargetFile(xliff string) (string, error) {
	ctx, cancel := a.queryContext()
	defer cancel()
	target, err := a.Engine.TargetFile(ctx, xliff)
	if err != nil {
		return "", fmt.Errorf("get target file: %w", err)
	}
	return target, nil
}

// GetLanguages returns the language list for source and target selectors.
func (a *App) GetLanguages() ([]engine.Choice, error) {
	return a.choices("get languages", a.Engine.Languages)
}

// GetCharsets returns the encodings available for source files.
func (a *App) GetCharsets() ([]engine.Choice, error) {
	return a.choices("get charsets", a.Engine.Charsets)
}

// GetTypes returns the supported source formats.
func (a *App) GetTypes() ([]engine.Choice, error) {
	return a.choices("get types", a.Engine.Types)
}

// GetPackageLanguages reads the language pair of a translation package.
func (a *App) GetPackageLanguages(pkg string) (map[string]any, error) {
	ctx, cancel := a.queryContext()
	defer cancel()
	resp, err := a.Engine.PackageLanguages(ctx, pkg)
	if err != nil {
		return nil, fmt.Errorf("get package languages: %w", err)
	}
	return resp, nil
}

// GetXliffLanguages reads the language pair declared in an XLIFF file.
func (a *App) GetXliffLanguages(xliff string) (map[string]any, error) {
	ctx, cancel := a.queryContext()
	defer cancel()
	resp, err := a.Engine.XliffLanguages(ctx, xliff)
	if err != nil {
		return nil, fmt.Errorf("get xliff languages: %w", err)
	}
	return resp, nil
}

// GetVersion returns the application version plus the engine component versions.
// An unreachable engine still yields the application version.
func (a *App) GetVersion() map[string]string {
	out := map[string]string{"XLIFFManager": config.Version}

	ctx, cancel := a.queryContext()
	defer cancel()
	versions, err := a.Engine.Version(ctx)
	if err != nil {
		a.logger.Warn("engine version", "error", err)
		return out
	}
	return lo.Assign(versions, out)
}

func (a *App) choices(op string, fetch func(context.Context) ([]engine.Choice, error)) ([]engine.Choice, error) {
	ctx, cancel := a.queryContext()
	defer cancel()
	list, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

func (a *App) queryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(a.lifetime, queryTimeout)
}

func firstNonEmpty(values ...string) string {
	value, _ := lo.Coalesce(lo.Map(values, func(v string, _ int) string {
		return strings.TrimSpace(v)
	})...)
	return value
}
