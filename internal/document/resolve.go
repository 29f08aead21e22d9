package document

// Action is the outcome of content-addressed resolution for an incoming
// document body.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionNoop   Action = "noop"
)

// Decision describes what the repository should do with an incoming body.
// For updates, ID carries the existing document's identity: the incoming
// object's caller-generated identity must be discarded in favor of it,
// otherwise one logical document would end up as two rows.
type Decision struct {
	Action      Action
	ID          string
	NextVersion int
}

// Resolve decides create-vs-update-vs-noop purely from the content hash.
// existing is the currently stored document with the same name, or nil.
// The next version is always derived from the stored document's version,
// never from a version embedded in the incoming object (which may be stale).
func Resolve(newHash string, existing *Document) Decision {
	if existing == nil {
		return Decision{Action: ActionCreate, NextVersion: 1}
	}
	if existing.ContentHash == newHash {
		return Decision{Action: ActionNoop, ID: existing.ID, NextVersion: existing.Version}
	}
	return Decision{Action: ActionUpdate, ID: existing.ID, NextVersion: existing.Version + 1}
}
