package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mpriess/planforge/internal/document"
)

// Change summaries used when the caller doesn't supply one.
const (
	summaryInitialCreation = "initial creation"
	summaryContentUpdated  = "content updated"
	summaryDeleted         = "DELETED - final version"
)

// noChangesNote marks an upsert that matched the stored hash and wrote nothing.
const noChangesNote = "no changes needed"

// CreateDocument inserts a new live document at version 1 together with its
// first history entry, in one transaction. Colliding with an existing live
// name is a duplicate failure; any other failure rolls back and is reported
// as a storage failure.
func (s *SQLiteStore) CreateDocument(ctx context.Context, doc *document.Document, changeSummary string) document.OpResult {
	if res, ok := validateDocument(doc); !ok {
		return res
	}
	if changeSummary == "" {
		changeSummary = summaryInitialCreation
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return document.OpFailure(doc.Name, document.ErrStorage, fmt.Sprintf("begin transaction: %v", err))
	}
	defer tx.Rollback()

	existing, err := getByNameTx(ctx, tx, doc.Name)
	if err != nil {
		return document.OpFailure(doc.Name, document.ErrStorage, fmt.Sprintf("lookup by name: %v", err))
	}
	if existing != nil {
		return document.OpFailure(doc.Name, document.ErrDuplicate,
			fmt.Sprintf("document named %q already exists", doc.Name))
	}

	prepareForInsert(doc)

	if err := insertLiveTx(ctx, tx, doc); err != nil {
		if isDuplicateKeyError(err) {
			return document.OpFailure(doc.Name, document.ErrDuplicate,
				fmt.Sprintf("document named %q already exists", doc.Name))
		}
		return document.OpFailure(doc.Name, document.ErrStorage, fmt.Sprintf("insert document: %v", err))
	}
	if err := appendHistoryTx(ctx, tx, doc, time.Now(), changeSummary); err != nil {
		return document.OpFailure(doc.Name, document.ErrStorage, fmt.Sprintf("append history: %v", err))
	}
	if err := tx.Commit(); err != nil {
		return document.OpFailure(doc.Name, document.ErrStorage, fmt.Sprintf("commit: %v", err))
	}

	return document.OpSuccess(doc.ID, doc.Name, doc.Version, "")
}

// UpsertDocument creates the document when its name is unknown, does nothing
// when the stored content hash matches, and otherwise bumps the version and
// appends a history entry. The stored version is re-read inside the
// transaction so a concurrent writer can't cause a lost update, and the
// incoming identity is always replaced by the stored one.
func (s *SQLiteStore) UpsertDocument(ctx context.Context, doc *document.Document, changeSummary string) document.OpResult {
	if res, ok := validateDocument(doc); !ok {
		return res
	}

	// Recompute defensively: the hash must reflect the content we persist,
	// not whatever the caller left on the object.
	doc.ContentHash = document.HashContent(doc.Content)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return document.OpFailure(doc.Name, document.ErrStorage, fmt.Sprintf("begin transaction: %v", err))
	}
	defer tx.Rollback()

	existing, err := getByNameTx(ctx, tx, doc.Name)
	if err != nil {
		return document.OpFailure(doc.Name, document.ErrStorage, fmt.Sprintf("lookup by name: %v", err))
	}

	decision := document.Resolve(doc.ContentHash, existing)
	switch decision.Action {
	case document.ActionCreate:
		tx.Rollback()
		return s.CreateDocument(ctx, doc, changeSummary)

	case document.ActionNoop:
		// Zero writes. Report success carrying the stored state.
		doc.ID = existing.ID
		doc.Version = existing.Version
		return document.OpSuccess(existing.ID, existing.Name, existing.Version, noChangesNote)
	}

	// Update: the caller-generated identity on the incoming object is
	// discarded in favor of the stored one.
	doc.ID = decision.ID
	doc.Version = decision.NextVersion
	doc.CreatedAt = existing.CreatedAt
	doc.UpdatedAt = time.Now()

	if changeSummary == "" {
		changeSummary = summaryContentUpdated
	}

	if err := updateLiveTx(ctx, tx, doc); err != nil {
		return document.OpFailure(doc.Name, document.ErrStorage, fmt.Sprintf("update document: %v", err))
	}
	if err := appendHistoryTx(ctx, tx, doc, time.Now(), changeSummary); err != nil {
		return document.OpFailure(doc.Name, document.ErrStorage, fmt.Sprintf("append history: %v", err))
	}
	if err := tx.Commit(); err != nil {
		return document.OpFailure(doc.Name, document.ErrStorage, fmt.Sprintf("commit: %v", err))
	}

	return document.OpSuccess(doc.ID, doc.Name, doc.Version, "")
}

// BulkUpsert applies UpsertDocument to each document independently. Each
// document owns its own transaction, so one failure never rolls back or
// aborts the others.
func (s *SQLiteStore) BulkUpsert(ctx context.Context, docs []*document.Document) []document.OpResult {
	results := make([]document.OpResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, s.UpsertDocument(ctx, doc, ""))
	}
	return results
}

// GetDocument returns the live document with the given identity, or nil
// when absent. Absence is not an error.
func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*document.Document, error) {
	row := s.db.QueryRowContext(ctx, selectDocumentSQL+" WHERE doc_id = ?", id)
	return scanDocument(row)
}

// GetDocumentByName returns the live document with the given name, or nil
// when absent.
func (s *SQLiteStore) GetDocumentByName(ctx context.Context, name string) (*document.Document, error) {
	row := s.db.QueryRowContext(ctx, selectDocumentSQL+" WHERE name = ?", name)
	return scanDocument(row)
}

// ListDocuments returns all live documents of the given kind, ordered by
// name for reproducible reports.
func (s *SQLiteStore) ListDocuments(ctx context.Context, kind document.Kind) ([]*document.Document, error) {
	rows, err := s.db.QueryContext(ctx, selectDocumentSQL+" WHERE kind = ? ORDER BY name", string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*document.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes the live row after archiving its final state, in
// one transaction, so the last live state is always recoverable from
// history. Deleting an unknown identity is a not_found failure, reported
// distinctly from storage errors.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, id string) document.OpResult {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return document.OpFailure("", document.ErrStorage, fmt.Sprintf("begin transaction: %v", err))
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, selectDocumentSQL+" WHERE doc_id = ?", id)
	doc, err := scanDocument(row)
	if err != nil {
		return document.OpFailure("", document.ErrStorage, fmt.Sprintf("lookup document: %v", err))
	}
	if doc == nil {
		return document.OpFailure("", document.ErrNotFound, fmt.Sprintf("no document with id %q", id))
	}

	// The final version's history row is rewritten in place with the
	// deletion marker. This is the one place history is not append-only;
	// the payload is unchanged, only the summary and archive time move.
	payload, err := json.Marshal(doc)
	if err != nil {
		return document.OpFailure(doc.Name, document.ErrStorage, fmt.Sprintf("encode payload: %v", err))
	}
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO document_history (doc_id, version, payload_json, archived_at, change_summary)
		VALUES (?, ?, ?, ?, ?)
	`, doc.ID, doc.Version, string(payload), encodeTime(time.Now()), summaryDeleted)
	if err != nil {
		return document.OpFailure(doc.Name, document.ErrStorage, fmt.Sprintf("archive final version: %v", err))
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE doc_id = ?`, doc.ID); err != nil {
		return document.OpFailure(doc.Name, document.ErrStorage, fmt.Sprintf("delete document: %v", err))
	}
	if err := tx.Commit(); err != nil {
		return document.OpFailure(doc.Name, document.ErrStorage, fmt.Sprintf("commit: %v", err))
	}

	return document.OpSuccess(doc.ID, doc.Name, doc.Version, "deleted")
}

// GetHistory returns all archived versions for an identity, oldest first.
// History survives deletion of the live row.
func (s *SQLiteStore) GetHistory(ctx context.Context, id string) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, version, payload_json, archived_at, change_summary
		FROM document_history
		WHERE doc_id = ?
		ORDER BY version ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var payload string
		if err := rows.Scan(&e.DocID, &e.Version, &payload, &e.ArchivedAt, &e.ChangeSummary); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &e.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode history payload: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}
	return entries, nil
}

// validateDocument applies the guard clauses shared by create and upsert.
// Contract violations are reported as validation failures, not panics.
func validateDocument(doc *document.Document) (document.OpResult, bool) {
	if doc == nil {
		return document.OpFailure("", document.ErrValidation, "document cannot be nil"), false
	}
	if doc.Name == "" {
		return document.OpFailure("", document.ErrValidation, "document name is required"), false
	}
	if doc.Kind != document.KindPlan && doc.Kind != document.KindCommand {
		return document.OpFailure(doc.Name, document.ErrValidation,
			fmt.Sprintf("unknown document kind %q", doc.Kind)), false
	}
	if doc.Kind == document.KindPlan && !document.ValidStatus(doc.Status) {
		return document.OpFailure(doc.Name, document.ErrValidation,
			fmt.Sprintf("invalid plan status %q", doc.Status)), false
	}
	return document.OpResult{}, true
}

// prepareForInsert fills identity, hash, version and timestamps ahead of a
// fresh insert.
func prepareForInsert(doc *document.Document) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.ContentHash = document.HashContent(doc.Content)
	doc.Version = 1
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
}

const selectDocumentSQL = `
	SELECT doc_id, name, kind, status, category, project, tags_json,
	       description, content, content_hash, version, source_filename,
	       created_at, updated_at
	FROM documents`

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*document.Document, error) {
	var doc document.Document
	var kind, status, tagsJSON, createdAt, updatedAt string

	err := row.Scan(
		&doc.ID,
		&doc.Name,
		&kind,
		&status,
		&doc.Category,
		&doc.Project,
		&tagsJSON,
		&doc.Description,
		&doc.Content,
		&doc.ContentHash,
		&doc.Version,
		&doc.SourceFilename,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}

	doc.Kind = document.Kind(kind)
	doc.Status = document.Status(status)
	if err := json.Unmarshal([]byte(tagsJSON), &doc.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if doc.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	if doc.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return nil, err
	}
	return &doc, nil
}

func getByNameTx(ctx context.Context, tx *sql.Tx, name string) (*document.Document, error) {
	row := tx.QueryRowContext(ctx, selectDocumentSQL+" WHERE name = ?", name)
	return scanDocument(row)
}

func insertLiveTx(ctx context.Context, tx *sql.Tx, doc *document.Document) error {
	tags, err := encodeTags(doc.Tags)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (
			doc_id, name, kind, status, category, project, tags_json,
			description, content, content_hash, version, source_filename,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		doc.ID,
		doc.Name,
		string(doc.Kind),
		string(doc.Status),
		doc.Category,
		doc.Project,
		tags,
		doc.Description,
		doc.Content,
		doc.ContentHash,
		doc.Version,
		doc.SourceFilename,
		encodeTime(doc.CreatedAt),
		encodeTime(doc.UpdatedAt),
	)
	return err
}

func updateLiveTx(ctx context.Context, tx *sql.Tx, doc *document.Document) error {
	tags, err := encodeTags(doc.Tags)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE documents
		SET status = ?, category = ?, project = ?, tags_json = ?,
		    description = ?, content = ?, content_hash = ?, version = ?,
		    source_filename = ?, updated_at = ?
		WHERE doc_id = ?
	`,
		string(doc.Status),
		doc.Category,
		doc.Project,
		tags,
		doc.Description,
		doc.Content,
		doc.ContentHash,
		doc.Version,
		doc.SourceFilename,
		encodeTime(doc.UpdatedAt),
		doc.ID,
	)
	return err
}

func appendHistoryTx(ctx context.Context, tx *sql.Tx, doc *document.Document, archivedAt time.Time, changeSummary string) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO document_history (doc_id, version, payload_json, archived_at, change_summary)
		VALUES (?, ?, ?, ?, ?)
	`, doc.ID, doc.Version, string(payload), encodeTime(archivedAt), changeSummary)
	return err
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}
