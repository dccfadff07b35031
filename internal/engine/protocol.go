package engine

import "fmt"

// DefaultEndpoint is the loopback address the engine listens on.
const DefaultEndpoint = "http://localhost:8000/FilterServer"

// Command names understood by the engine.
const (
	CommandGetFileType      = "getFileType"
	CommandGetTargetFile    = "getTargetFile"
	CommandConvert          = "convert"
	CommandMerge            = "merge"
	CommandValidate         = "validateXliff"
	CommandAnalyse          = "analyseXliff"
	CommandStatus           = "status"
	CommandVersion          = "version"
	CommandGetLanguages     = "getLanguages"
	CommandGetCharsets      = "getCharsets"
	CommandGetTypes         = "getTypes"
	CommandPackageLanguages = "getPackageLangs"
	CommandXliffLanguages   = "getXliffLangs"
	CommandCopySources      = "copySources"
	CommandPseudoTranslate  = "pseudoTranslate"
	CommandRemoveTargets    = "removeTargets"
	CommandApproveAll       = "approveAll"

	CommandConversionResult = "conversionResult"
	CommandMergeResult      = "mergeResult"
	CommandValidationResult = "validationResult"
	CommandAnalysisResult   = "analysisResult"
	CommandTasksResult      = "tasksResult"
)

// Status values reported by the status command.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Result values carried by completed job payloads.
const (
	ResultSuccess = "Success"
	ResultFailed  = "Failed"
)

// Request is one JSON command object; "command" selects the operation.
type Request map[string]any

// NewRequest builds a request for command with optional key/value pairs.
func NewRequest(command string, kv ...any) Request {
	req := Request{"command": command}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		req[key] = kv[i+1]
	}
	return req
}

// Command returns the command name.
func (r Request) Command() string {
	command, _ := r["command"].(string)
	return command
}

// Response is one decoded JSON reply.
type Response map[string]any

// String returns the string value of key, or "" when absent or not a string.
func (r Response) String(key string) string {
	value, _ := r[key].(string)
	return value
}

// List returns the array value of key.
func (r Response) List(key string) []any {
	value, _ := r[key].([]any)
	return value
}

// ErrorKind classifies where a failure originated.
type ErrorKind string

const (
	// KindTransport covers connection and I/O failures.
	KindTransport ErrorKind = "transport"
	// KindProtocol covers non-200 replies and malformed JSON.
	KindProtocol ErrorKind = "protocol"
	// KindDomain covers well-formed replies reporting a failed operation.
	KindDomain ErrorKind = "domain"
)

// Error is an engine failure with the command that produced it.
type Error struct {
	Kind    ErrorKind
	Command string
	Message string
	Err     error
}

// Error formats engine failures for logs and dialogs.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Command == "" {
		return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s %s error: %s", e.Command, e.Kind, e.Message)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ResultError converts a completed job payload into a domain error when it reports failure.
// Payloads without a "result" field, such as validation reports, are never errors.
func ResultError(command string, resp Response) error {
	result := resp.String("result")
	if result == "" || result == ResultSuccess {
		return nil
	}

	reason := resp.String("reason")
	if reason == "" {
		reason = result
	}
	return &Error{Kind: KindDomain, Command: command, Message: reason}
}
