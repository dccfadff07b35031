package jobs

import (
	"github.com/samber/lo"

	"xliff-manager/internal/domain"
	"xliff-manager/internal/engine"
)

// Spec ties a job kind to its result command and completion channel.
type Spec struct {
	Kind          domain.JobKind
	ResultCommand string
	Completed     EventType
	Running       string
}

var specs = map[domain.JobKind]Spec{
	domain.JobKindConvert: {
		Kind:          domain.JobKindConvert,
		ResultCommand: engine.CommandConversionResult,
		Completed:     EventConversionCompleted,
		Running:       "Creating XLIFF",
	},
	domain.JobKindMerge: {
		Kind:          domain.JobKindMerge,
		ResultCommand: engine.CommandMergeResult,
		Completed:     EventMergeCompleted,
		Running:       "Merging XLIFF",
	},
	domain.JobKindValidate: {
		Kind:          domain.JobKindValidate,
		ResultCommand: engine.CommandValidationResult,
		Completed:     EventValidationResult,
		Running:       "Validating XLIFF",
	},
	domain.JobKindAnalyse: {
		Kind:          domain.JobKindAnalyse,
		ResultCommand: engine.CommandAnalysisResult,
		Completed:     EventAnalysisCompleted,
		Running:       "Analysing XLIFF",
	},
	domain.JobKindTask: {
		Kind:          domain.JobKindTask,
		ResultCommand: engine.CommandTasksResult,
		Completed:     EventProcessCompleted,
		Running:       "Processing XLIFF",
	},
}

// SpecFor returns the polling spec for kind.
func SpecFor(kind domain.JobKind) (Spec, bool) {
	spec, ok := specs[kind]
	return spec, ok
}

// TaskCommands are the translation task commands accepted by RunTask.
var TaskCommands = []string{
	engine.CommandCopySources,
	engine.CommandPseudoTranslate,
	engine.CommandRemoveTargets,
	engine.CommandApproveAll,
}

// IsTaskCommand reports whether command is a translation task.
func IsTaskCommand(command string) bool {
	return lo.Contains(TaskCommands, command)
}
