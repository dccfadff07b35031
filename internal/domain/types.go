package domain

import "time"

// JobKind names one long-running engine operation family.
type JobKind string

const (
	JobKindConvert  JobKind = "convert"
	JobKindMerge    JobKind = "merge"
	JobKindValidate JobKind = "validate"
	JobKindAnalyse  JobKind = "analyse"
	JobKindTask     JobKind = "task"
)

// JobKinds lists every kind in menu order.
var JobKinds = []JobKind{JobKindConvert, JobKindMerge, JobKindValidate, JobKindAnalyse, JobKindTask}

// JobState tracks the lifecycle of one polled engine job.
type JobState string

const (
	JobStateSubmitted JobState = "submitted"
	JobStateRunning   JobState = "running"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
)

// Terminal reports whether no further transitions can happen.
func (s JobState) Terminal() bool {
	return s == JobStateCompleted || s == JobStateFailed
}

// Job is a snapshot of one engine job as seen by the shell.
type Job struct {
	Kind      JobKind   `json:"kind"`
	ProcessID string    `json:"processId,omitempty"`
	State     JobState  `json:"state"`
	Reason    string    `json:"reason,omitempty"`
	StartedAt time.Time `json:"startedAt"`
}

// Preferences is the persisted defaults record shared with the engine forms.
type Preferences struct {
	SrcLang  string `json:"srcLang"`
	TgtLang  string `json:"tgtLang"`
	Skeleton string `json:"skeleton"`
	Catalog  string `json:"catalog"`
	SRX      string `json:"srx"`
	Theme    string `json:"theme"`
	AppLang  string `json:"appLang"`
}

// Bounds is the main window rectangle.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether the rectangle has a usable size.
func (b Bounds) Valid() bool {
	return b.Width > 0 && b.Height > 0
}

// JobRecord is one finished job kept in the local history.
type JobRecord struct {
	ID         int64     `json:"id"`
	Kind       JobKind   `json:"kind"`
	ProcessID  string    `json:"processId"`
	Input      string    `json:"input"`
	State      JobState  `json:"state"`
	Reason     string    `json:"reason,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Duration returns the wall time between start and finish.
func (r JobRecord) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FileFormat is one entry of a file dialog filter list.
type FileFormat struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}
