package jobs

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"

	"xliff-manager/internal/domain"
)

// ErrJobAlreadyRunning is returned when a kind already has an active job.
var ErrJobAlreadyRunning = errors.New("job already running")

// ErrNoActiveJob is returned when a transition targets a kind with no job.
var ErrNoActiveJob = errors.New("no active job")

// Manager tracks at most one job per kind and its transitions.
type Manager struct {
	mu   sync.RWMutex
	jobs map[domain.JobKind]domain.Job
	now  func() time.Time
}

// NewManager creates a manager with no jobs.
func NewManager() *Manager {
	return &Manager{
		jobs: make(map[domain.JobKind]domain.Job),
		now:  time.Now,
	}
}

// Begin reserves kind in submitted state before any engine request is sent.
func (m *Manager) Begin(kind domain.JobKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.jobs[kind]; ok && !current.State.Terminal() {
		return fmt.Errorf("%s: %w", kind, ErrJobAlreadyRunning)
	}

	m.jobs[kind] = domain.Job{
		Kind:      kind,
		State:     domain.JobStateSubmitted,
		StartedAt: m.now().UTC(),
	}
	return nil
}

// Running records the engine process id once the submit was accepted.
func (m *Manager) Running(kind domain.JobKind, processID string) error {
	return m.transition(kind, domain.JobStateRunning, func(job *domain.Job) {
		job.ProcessID = processID
	})
}

// Finish moves the job of kind to a terminal state.
func (m *Manager) Finish(kind domain.JobKind, state domain.JobState, reason string) error {
	if !state.Terminal() {
		return fmt.Errorf("finish with non-terminal state %s", state)
	}
	return m.transition(kind, state, func(job *domain.Job) {
		job.Reason = reason
	})
}

func (m *Manager) transition(kind domain.JobKind, to domain.JobState, apply func(*domain.Job)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[kind]
	if !ok {
		return fmt.Errorf("%s: %w", kind, ErrNoActiveJob)
	}
	if !isValidTransition(job.State, to) {
		return fmt.Errorf("invalid transition: %s -> %s", job.State, to)
	}

	job.State = to
	apply(&job)
	m.jobs[kind] = job
	return nil
}

// Get returns a snapshot of the latest job of kind.
func (m *Manager) Get(kind domain.JobKind) (domain.Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[kind]
	return job, ok
}

// IsActive reports whether kind has a job that has not finished.
func (m *Manager) IsActive(kind domain.JobKind) bool {
	job, ok := m.Get(kind)
	return ok && !job.State.Terminal()
}

// Active returns unfinished jobs in menu order.
func (m *Manager) Active() []domain.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return lo.FilterMap(domain.JobKinds, func(kind domain.JobKind, _ int) (domain.Job, bool) {
		job, ok := m.jobs[kind]
		return job, ok && !job.State.Terminal()
	})
}

// isValidTransition enforces the allowed job state machine edges.
func isValidTransition(from, to domain.JobState) bool {
	switch from {
	case domain.JobStateSubmitted:
		return to == domain.JobStateRunning || to == domain.JobStateFailed
	case domain.JobStateRunning:
		return to == domain.JobStateCompleted || to == domain.JobStateFailed
	default:
		return false
	}
}
