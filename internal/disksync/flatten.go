package disksync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mpriess/planforge/internal/document"
)

// DocumentLister is the slice of the storage layer flatten needs.
type DocumentLister interface {
	ListDocuments(ctx context.Context, kind document.Kind) ([]*document.Document, error)
}

// FlattenEntry is the outcome of writing one document back to disk.
type FlattenEntry struct {
	Name    string
	Path    string
	Success bool
	Kind    document.ErrorKind
	Message string
}

// FlattenPlans writes every stored plan back under its status subdirectory
// of root, creating directories as needed. A plan without a project or a
// reconstructable filename is reported and skipped; the rest of the batch
// still runs.
func (e *Engine) FlattenPlans(ctx context.Context, store DocumentLister, root string) ([]FlattenEntry, error) {
	docs, err := store.ListDocuments(ctx, document.KindPlan)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	var entries []FlattenEntry
	for _, doc := range docs {
		entry := FlattenEntry{Name: doc.Name}

		if doc.Project == "" {
			entry.Kind = document.ErrValidation
			entry.Message = "plan has no project; cannot place it on disk"
			entries = append(entries, entry)
			continue
		}

		filename, ok := e.planFilename(doc)
		if !ok {
			entry.Kind = document.ErrValidation
			entry.Message = "cannot reconstruct original filename from stored name"
			entries = append(entries, entry)
			continue
		}

		dir := filepath.Join(root, document.StatusDirs[doc.Status])
		entries = append(entries, writeEntry(entry, dir, filename, doc.Content))
	}
	return entries, nil
}

// FlattenCommands writes every stored command back under its category
// subdirectory of root. Uncategorized commands go to the root itself,
// mirroring how loose files are loaded. A command whose category is not in
// the allow-list has lost its placement tag and is reported, not written.
func (e *Engine) FlattenCommands(ctx context.Context, store DocumentLister, root string) ([]FlattenEntry, error) {
	docs, err := store.ListDocuments(ctx, document.KindCommand)
	if err != nil {
		return nil, fmt.Errorf("failed to list commands: %w", err)
	}

	var entries []FlattenEntry
	for _, doc := range docs {
		entry := FlattenEntry{Name: doc.Name}

		if doc.Category == "" || !e.categories.Contains(doc.Category) {
			entry.Kind = document.ErrMissingSourceTag
			entry.Message = fmt.Sprintf("command category %q is not configured; cannot place it on disk", doc.Category)
			entries = append(entries, entry)
			continue
		}

		filename, ok := e.commandFilename(doc)
		if !ok {
			entry.Kind = document.ErrValidation
			entry.Message = "cannot reconstruct original filename from stored name"
			entries = append(entries, entry)
			continue
		}

		dir := root
		if doc.Category != document.CategoryUncategorized {
			dir = filepath.Join(root, doc.Category)
		}
		entries = append(entries, writeEntry(entry, dir, filename, doc.Content))
	}
	return entries, nil
}

func writeEntry(entry FlattenEntry, dir, filename, content string) FlattenEntry {
	if err := os.MkdirAll(dir, 0755); err != nil {
		entry.Kind = document.ErrDirectory
		entry.Message = fmt.Sprintf("failed to create directory: %v", err)
		return entry
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		entry.Kind = document.ErrDirectory
		entry.Message = fmt.Sprintf("failed to write file: %v", err)
		return entry
	}

	entry.Path = path
	entry.Success = true
	return entry
}

// planFilename prefers the recorded source filename and falls back to
// stripping the stored-name prefix, which is lossless because the prefix is
// rebuilt from the document's own fields.
func (e *Engine) planFilename(doc *document.Document) (string, bool) {
	if doc.SourceFilename != "" {
		return doc.SourceFilename, true
	}
	filename, err := document.ParsePlanStoredName(doc.Name, doc.Project, doc.Status)
	return filename, err == nil
}

func (e *Engine) commandFilename(doc *document.Document) (string, bool) {
	if doc.SourceFilename != "" {
		return doc.SourceFilename, true
	}
	filename, err := document.ParseCommandStoredName(doc.Name, doc.Category)
	return filename, err == nil
}
