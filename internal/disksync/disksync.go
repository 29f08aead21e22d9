// Package disksync reconciles the on-disk directory tree of plans and
// commands with the document repository, in both directions. Loading never
// writes to the repository itself; it produces documents plus a typed error
// list that the caller feeds into the repository and merges into one
// report.
package disksync

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mpriess/planforge/internal/document"
)

// LoadError is one file that could not be loaded. The walk always continues
// past it.
type LoadError struct {
	File    string
	Kind    document.ErrorKind
	Message string
}

// LoadResult aggregates a directory walk: documents built successfully plus
// every per-file failure.
type LoadResult struct {
	Documents []*document.Document
	Errors    []LoadError
}

// MergeOpResults folds repository-side failures into the load report so one
// taxonomy covers both "file read failed" and "database write failed".
func (r *LoadResult) MergeOpResults(results []document.OpResult) {
	for _, res := range results {
		if !res.Success {
			r.Errors = append(r.Errors, LoadError{
				File:    res.Name,
				Kind:    res.Err,
				Message: res.Message,
			})
		}
	}
}

// Engine converts between disk layout and documents. Plans live under
// <root>/{drafts,approved,completed}; commands live under one subdirectory
// per configured category, with loose files treated as uncategorized.
type Engine struct {
	project    string
	categories document.CategorySet
}

// NewEngine creates an engine for the given project and category allow-list.
func NewEngine(project string, categories document.CategorySet) *Engine {
	return &Engine{project: project, categories: categories}
}

// LoadPlans walks the plan status directories in sorted order and builds a
// plan document per file. Files violating the naming contract are renamed
// on disk first, so each document's name reflects the post-normalization
// filename.
func (e *Engine) LoadPlans(root string) *LoadResult {
	result := &LoadResult{}

	statusDirs := make([]string, 0, len(document.StatusDirs))
	for _, dir := range document.StatusDirs {
		statusDirs = append(statusDirs, dir)
	}
	sort.Strings(statusDirs)

	for _, dir := range statusDirs {
		status, _ := document.StatusForDir(dir)
		for _, filename := range e.loadDir(filepath.Join(root, dir), result) {
			path := filepath.Join(root, dir, filename)
			doc, ok := e.buildPlan(path, filename, status, result)
			if ok {
				result.Documents = append(result.Documents, doc)
			}
		}
	}
	return result
}

// LoadCommands walks the configured category subdirectories plus loose
// files at the root (treated as uncategorized).
func (e *Engine) LoadCommands(root string) *LoadResult {
	result := &LoadResult{}

	for _, category := range e.categories.Names() {
		dir := root
		if category != document.CategoryUncategorized {
			dir = filepath.Join(root, category)
		}
		for _, filename := range e.loadDir(dir, result) {
			path := filepath.Join(dir, filename)
			doc, ok := e.buildCommand(path, filename, category, result)
			if ok {
				result.Documents = append(result.Documents, doc)
			}
		}
	}
	return result
}

// loadDir lists a directory's files in sorted order, renaming any file
// whose name violates the contract before it is reported. A missing
// directory is simply empty; other failures become load errors.
func (e *Engine) loadDir(dir string, result *LoadResult) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		result.Errors = append(result.Errors, LoadError{
			File:    dir,
			Kind:    document.ErrDirectory,
			Message: fmt.Sprintf("failed to read directory: %v", err),
		})
		return nil
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		if !document.ValidFilename(name) {
			normalized := document.NormalizeFilename(name)
			if err := os.Rename(filepath.Join(dir, name), filepath.Join(dir, normalized)); err != nil {
				result.Errors = append(result.Errors, LoadError{
					File:    name,
					Kind:    document.ErrDirectory,
					Message: fmt.Sprintf("failed to normalize filename: %v", err),
				})
				continue
			}
			name = normalized
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Engine) buildPlan(path, filename string, status document.Status, result *LoadResult) (*document.Document, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, LoadError{
			File:    filename,
			Kind:    document.ErrDirectory,
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
		return nil, false
	}

	doc := document.New(document.KindPlan)
	doc.Status = status
	doc.Project = e.project
	doc.SourceFilename = filename
	doc.Name = document.PlanStoredName(e.project, status, filename)
	doc.Description = firstHeading(string(content))
	doc.SetContent(string(content))
	return doc, true
}

func (e *Engine) buildCommand(path, filename, category string, result *LoadResult) (*document.Document, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, LoadError{
			File:    filename,
			Kind:    document.ErrDirectory,
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
		return nil, false
	}

	doc := document.New(document.KindCommand)
	doc.Category = e.categories.Normalize(category)
	doc.SourceFilename = filename
	doc.Name = document.CommandStoredName(doc.Category, filename)
	doc.Description = firstHeading(string(content))
	doc.SetContent(string(content))
	return doc, true
}

// firstHeading extracts the first markdown heading as a description, or "".
func firstHeading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return ""
}
