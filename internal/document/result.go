package document

// ErrorKind classifies an operation failure. Storage, filesystem, subprocess
// and git failures are all reported through this taxonomy instead of being
// propagated as errors, so batch operations can compose complete reports.
type ErrorKind string

const (
	ErrNone             ErrorKind = ""
	ErrDuplicate        ErrorKind = "duplicate"
	ErrNotFound         ErrorKind = "not_found"
	ErrValidation       ErrorKind = "validation"
	ErrStorage          ErrorKind = "storage"
	ErrDirectory        ErrorKind = "directory"
	ErrProcess          ErrorKind = "process"
	ErrGit              ErrorKind = "git"
	ErrMissingSourceTag ErrorKind = "missing_source_tag"
)

// OpResult is the typed outcome of a single document operation. Repository
// operations never raise past their boundary; they return one of these.
type OpResult struct {
	Success bool
	ID      string
	Name    string
	Version int
	Note    string
	Err     ErrorKind
	Message string
}

// OpSuccess builds a success result.
func OpSuccess(id, name string, version int, note string) OpResult {
	return OpResult{Success: true, ID: id, Name: name, Version: version, Note: note}
}

// OpFailure builds a failure result.
func OpFailure(name string, kind ErrorKind, message string) OpResult {
	return OpResult{Name: name, Err: kind, Message: message}
}
