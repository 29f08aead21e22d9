package document

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Filename contract: stems use underscores (never hyphens, spaces or
// punctuation) and the extension is .md or .toml. Stored names prefix the
// normalized filename with the document's disk coordinates so Name stays
// unique across projects, statuses and categories.

// ValidFilename reports whether name already satisfies the naming contract.
func ValidFilename(name string) bool {
	return name != "" && name == NormalizeFilename(name)
}

// NormalizeFilename rewrites a filename to satisfy the contract: every
// character outside [A-Za-z0-9_] in the stem becomes an underscore, and an
// unsupported extension is forced to .md. The function is idempotent.
func NormalizeFilename(name string) string {
	name = strings.TrimSpace(name)
	ext := strings.ToLower(filepath.Ext(name))
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if ext != ".md" && ext != ".toml" {
		ext = ".md"
	}

	var b strings.Builder
	b.Grow(len(stem) + len(ext))
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	b.WriteString(ext)
	return b.String()
}

// PlanStoredName derives the database name for a plan from its project,
// status and normalized filename.
func PlanStoredName(project string, status Status, filename string) string {
	return fmt.Sprintf("%s_%s_%s", project, status, filename)
}

// CommandStoredName derives the database name for a command from its
// category and normalized filename.
func CommandStoredName(category, filename string) string {
	return fmt.Sprintf("%s_%s", category, filename)
}

// ParsePlanStoredName recovers the original filename from a stored plan
// name. The project and status are known at parse time, so the prefix is
// stripped as a literal string; this stays correct even when the project
// name itself contains underscores.
func ParsePlanStoredName(stored, project string, status Status) (string, error) {
	prefix := fmt.Sprintf("%s_%s_", project, status)
	filename, ok := strings.CutPrefix(stored, prefix)
	if !ok || filename == "" {
		return "", fmt.Errorf("stored name %q does not start with %q", stored, prefix)
	}
	return filename, nil
}

// ParseCommandStoredName recovers the original filename from a stored
// command name given its category.
func ParseCommandStoredName(stored, category string) (string, error) {
	prefix := category + "_"
	filename, ok := strings.CutPrefix(stored, prefix)
	if !ok || filename == "" {
		return "", fmt.Errorf("stored name %q does not start with %q", stored, prefix)
	}
	return filename, nil
}

// Slug converts a plan filename stem to its branch-name form
// (underscores become hyphens).
func Slug(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	return strings.ReplaceAll(stem, "_", "-")
}
