// Package storage provides SQLite-based persistent storage for planforge.
// It handles versioned documents, their append-only history, and the AI
// provider response cache.
package storage

import (
	"context"

	"github.com/mpriess/planforge/internal/document"
)

// Store defines the interface for all storage operations. Document
// mutations return typed results instead of raising: every runtime failure
// (constraint violation, transaction error) is folded into the result so
// batch callers can compose complete reports.
type Store interface {
	// Documents
	CreateDocument(ctx context.Context, doc *document.Document, changeSummary string) document.OpResult
	UpsertDocument(ctx context.Context, doc *document.Document, changeSummary string) document.OpResult
	BulkUpsert(ctx context.Context, docs []*document.Document) []document.OpResult
	GetDocument(ctx context.Context, id string) (*document.Document, error)
	GetDocumentByName(ctx context.Context, name string) (*document.Document, error)
	ListDocuments(ctx context.Context, kind document.Kind) ([]*document.Document, error)
	DeleteDocument(ctx context.Context, id string) document.OpResult
	GetHistory(ctx context.Context, id string) ([]HistoryEntry, error)

	// Response cache
	GetCached(ctx context.Context, key string) (*CacheEntry, error)
	SetCached(ctx context.Context, entry *CacheEntry) error
	PruneExpiredCache(ctx context.Context) (int64, error)

	// Lifecycle
	Close() error
}

// HistoryEntry is one archived document version.
type HistoryEntry struct {
	DocID         string
	Version       int
	Payload       document.Document
	ArchivedAt    string
	ChangeSummary string
}

// CacheEntry represents a cached AI provider response.
type CacheEntry struct {
	CacheKey        string
	ResponseText    string
	Provider        string
	CreatedAtUnixMs int64
	ExpiresAtUnixMs int64
	HitCount        int64
}
