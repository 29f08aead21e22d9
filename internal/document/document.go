// Package document defines the versioned document model shared by the
// storage layer, the disk sync engine, and the CLI. A document is one unit
// of stored text content: a project plan or a reusable command template.
package document

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind identifies what a document represents.
type Kind string

const (
	KindPlan    Kind = "plan"
	KindCommand Kind = "command"
)

// Status is the workflow stage of a plan. It mirrors the on-disk directory
// layout (drafts/, approved/, completed/). Commands have no status.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusApproved  Status = "approved"
	StatusCompleted Status = "completed"
)

// CategoryUncategorized is the fallback category for command documents that
// don't live under a configured category subdirectory.
const CategoryUncategorized = "uncategorized"

// Document is one versioned unit of text content. ID is assigned once at
// first creation and never reassigned across updates; Name is the natural
// key joining the disk and database worlds.
type Document struct {
	ID          string
	Name        string
	Kind        Kind
	Status      Status
	Category    string
	Project     string
	Tags        []string
	Description string
	Content     string
	ContentHash string
	Version     int

	// SourceFilename is the normalized original filename, kept verbatim so
	// flatten never has to reverse-parse it out of Name.
	SourceFilename string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a document of the given kind with a fresh identity at version 1.
func New(kind Kind) *Document {
	return &Document{
		ID:      uuid.NewString(),
		Kind:    kind,
		Version: 1,
	}
}

// SetContent updates the body and recomputes the content hash.
func (d *Document) SetContent(content string) {
	d.Content = content
	d.ContentHash = HashContent(content)
}

// HashContent returns the SHA-256 hex digest of a document body. It is the
// sole change-detection signal: equal content always yields equal hashes.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// ValidStatus reports whether s is a known plan status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusApproved, StatusCompleted:
		return true
	}
	return false
}

// StatusDirs maps each plan status to its on-disk subdirectory.
var StatusDirs = map[Status]string{
	StatusDraft:     "drafts",
	StatusApproved:  "approved",
	StatusCompleted: "completed",
}

// StatusForDir returns the status for an on-disk subdirectory name.
func StatusForDir(dir string) (Status, bool) {
	for status, d := range StatusDirs {
		if d == dir {
			return status, true
		}
	}
	return "", false
}

// CategorySet validates command categories against a configuration-supplied
// allow-list. Anything outside the list folds into CategoryUncategorized.
type CategorySet struct {
	allowed map[string]struct{}
}

// NewCategorySet builds a category allow-list. Names are lowercased;
// CategoryUncategorized is always a member.
func NewCategorySet(names []string) CategorySet {
	allowed := make(map[string]struct{}, len(names)+1)
	allowed[CategoryUncategorized] = struct{}{}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			allowed[n] = struct{}{}
		}
	}
	return CategorySet{allowed: allowed}
}

// Contains reports whether name is an allowed category.
func (c CategorySet) Contains(name string) bool {
	_, ok := c.allowed[strings.ToLower(name)]
	return ok
}

// Normalize returns the canonical form of name, or CategoryUncategorized
// when name is empty or not in the allow-list.
func (c CategorySet) Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := c.allowed[name]; ok {
		return name
	}
	return CategoryUncategorized
}

// Names returns the allowed categories in sorted order.
func (c CategorySet) Names() []string {
	names := make([]string, 0, len(c.allowed))
	for n := range c.allowed {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
