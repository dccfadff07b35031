package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"xliff-manager/internal/domain"
	"xliff-manager/internal/engine"
)

// DefaultInterval is the fixed delay between status requests.
const DefaultInterval = time.Second

// Sender delivers one engine command.
type Sender interface {
	Send(ctx context.Context, req engine.Request) (engine.Response, error)
}

// Failure describes why a job ended without a result.
type Failure struct {
	Kind      domain.JobKind
	ProcessID string
	Status    string
	Reason    string
	Err       error
}

// Error formats job failures for logs and UI.
func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	if f.ProcessID == "" {
		return fmt.Sprintf("%s failed: %s", f.Kind, f.Reason)
	}
	return fmt.Sprintf("%s job %s failed: %s", f.Kind, f.ProcessID, f.Reason)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (f *Failure) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Err
}

// Job is one submitted engine operation being polled to completion.
type Job struct {
	kind      domain.JobKind
	id        string
	startedAt time.Time
	done      chan struct{}

	mu     sync.Mutex
	state  domain.JobState
	result engine.Response
	err    error
	polls  int
}

func newJob(kind domain.JobKind, id string) *Job {
	return &Job{
		kind:      kind,
		id:        id,
		startedAt: time.Now().UTC(),
		done:      make(chan struct{}),
		state:     domain.JobStateRunning,
	}
}

func (j *Job) ID() string { return j.id }
func (j *Job) Kind() domain.JobKind { return j.kind }
func (j *Job) Done() <-chan struct{} { return j.done }
func (j *Job) StartedAt() time.Time { return j.startedAt }

// State returns the current lifecycle state.
func (j *Job) State() domain.JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Polls returns how many status requests were issued.
func (j *Job) Polls() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.polls
}

// Result returns the outcome once Done is closed.
func (j *Job) Result() (engine.Response, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result, j.err
}

// Wait blocks until the job finishes or ctx ends.
func (j *Job) Wait(ctx context.Context) (engine.Response, error) {
	select {
	case <-j.done:
		return j.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Snapshot converts the job into its domain view.
func (j *Job) Snapshot() domain.Job {
	j.mu.Lock()
	defer j.mu.Unlock()
	job := domain.Job{
		Kind:      j.kind,
		ProcessID: j.id,
		State:     j.state,
		StartedAt: j.startedAt,
	}
	if j.err != nil {
		job.Reason = j.err.Error()
	}
	return job
}

// finish records the single terminal transition.
func (j *Job) finish(result engine.Response, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state.Terminal() {
		return
	}
	j.result = result
	j.err = err
	if err != nil {
		j.state = domain.JobStateFailed
	} else {
		j.state = domain.JobStateCompleted
	}
	close(j.done)
}

func (j *Job) countPoll() {
	j.mu.Lock()
	j.polls++
	j.mu.Unlock()
}

// Poller submits long engine commands and polls their status.
type Poller struct {
	sender   Sender
	interval time.Duration
	logger   *slog.Logger
}

// NewPoller creates a poller; a non-positive interval selects DefaultInterval.
func NewPoller(sender Sender, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		sender:   sender,
		interval: interval,
		logger:   logger.With("component", "poller"),
	}
}

// Start submits req. A failed submit returns an error and never polls.
// The returned job polls until completed, failed or ctx is cancelled.
func (p *Poller) Start(ctx context.Context, kind domain.JobKind, req engine.Request) (*Job, error) {
	spec, ok := SpecFor(kind)
	if !ok {
		return nil, fmt.Errorf("unknown job kind %q", kind)
	}

	resp, err := p.sender.Send(ctx, req)
	if err != nil {
		return nil, &Failure{Kind: kind, Reason: err.Error(), Err: err}
	}
	if err := engine.ResultError(req.Command(), resp); err != nil {
		return nil, &Failure{Kind: kind, Reason: err.Error(), Err: err}
	}

	processID := resp.String("process")
	if processID == "" {
		err := &engine.Error{Kind: engine.KindProtocol, Command: req.Command(), Message: "response has no process id"}
		return nil, &Failure{Kind: kind, Reason: err.Error(), Err: err}
	}

	job := newJob(kind, processID)
	p.logger.Info("job submitted", "kind", kind, "process", processID)

	go p.run(ctx, job, spec)
	return job, nil
}

func (p *Poller) run(ctx context.Context, job *Job, spec Spec) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.fail(job, "", ctx.Err().Error(), ctx.Err())
			return
		case <-ticker.C:
		}

		status := p.status(ctx, job)
		switch status {
		case engine.StatusRunning:
			continue
		case engine.StatusCompleted:
			ticker.Stop()
			resp, err := p.sender.Send(ctx, engine.ResultRequest(spec.ResultCommand, job.id))
			if err != nil {
				p.fail(job, status, err.Error(), err)
				return
			}
			p.logger.Info("job completed", "kind", job.kind, "process", job.id, "polls", job.Polls())
			job.finish(resp, nil)
			return
		default:
			if err := ctx.Err(); err != nil {
				p.fail(job, "", err.Error(), err)
				return
			}
			p.fail(job, status, status, nil)
			return
		}
	}
}

// status issues one status request; transport and protocol failures read as "error".
func (p *Poller) status(ctx context.Context, job *Job) string {
	job.countPoll()
	resp, err := p.sender.Send(ctx, engine.StatusRequest(job.id))
	if err != nil {
		p.logger.Warn("status request failed", "kind", job.kind, "process", job.id, "error", err)
	}
	return engine.StatusOf(resp, err)
}

func (p *Poller) fail(job *Job, status, reason string, err error) {
	if reason == "" {
		reason = "empty status"
	}
	p.logger.Warn("job failed", "kind", job.kind, "process", job.id, "reason", reason)
	job.finish(nil, &Failure{
		Kind:      job.kind,
		ProcessID: job.id,
		Status:    status,
		Reason:    reason,
		Err:       err,
	})
}
