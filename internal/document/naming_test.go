package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already valid", "add_feature.md", "add_feature.md"},
		{"hyphens become underscores", "add-feature.md", "add_feature.md"},
		{"spaces and punctuation", "Bad Name!file.md", "Bad_Name_file.md"},
		{"toml kept", "build_config.toml", "build_config.toml"},
		{"unsupported extension forced to md", "notes.txt", "notes.md"},
		{"no extension", "README", "README.md"},
		{"dots in stem", "v1.2-plan.md", "v1_2_plan.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeFilename(tt.input))
		})
	}
}

func TestNormalizeFilename_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"add-feature.md", "Bad Name!file.md", "x.toml", "weird..name.txt",
		"already_fine.md", "trailing space .md",
	}
	for _, in := range inputs {
		once := NormalizeFilename(in)
		assert.Equal(t, once, NormalizeFilename(once), "normalize(%q) not idempotent", in)
	}
}

func TestValidFilename(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidFilename("add_feature.md"))
	assert.True(t, ValidFilename("config.toml"))
	assert.False(t, ValidFilename("add-feature.md"))
	assert.False(t, ValidFilename("notes.txt"))
	assert.False(t, ValidFilename(""))
}

func TestStoredNameRoundTrip_Plans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		project  string
		status   Status
		original string
	}{
		{"webapp", StatusApproved, "add-feature.md"},
		{"webapp", StatusDraft, "Bad Name!file.md"},
		{"my_tool", StatusCompleted, "fix_login.md"}, // underscore in project
		{"api", StatusApproved, "schema.toml"},
	}

	for _, tt := range tests {
		normalized := NormalizeFilename(tt.original)
		stored := PlanStoredName(tt.project, tt.status, normalized)

		got, err := ParsePlanStoredName(stored, tt.project, tt.status)
		require.NoError(t, err)
		assert.Equal(t, normalized, got)
	}
}

func TestStoredNameRoundTrip_Commands(t *testing.T) {
	t.Parallel()

	for _, original := range []string{"run-tests.md", "deploy.md", "lint config.toml"} {
		normalized := NormalizeFilename(original)
		stored := CommandStoredName("golang", normalized)

		got, err := ParseCommandStoredName(stored, "golang")
		require.NoError(t, err)
		assert.Equal(t, normalized, got)
	}
}

func TestParsePlanStoredName_WrongPrefix(t *testing.T) {
	t.Parallel()

	_, err := ParsePlanStoredName("other_draft_file.md", "webapp", StatusApproved)
	assert.Error(t, err)
}

func TestSlug(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "add-user-auth", Slug("add_user_auth.md"))
	assert.Equal(t, "plain", Slug("plain.md"))
}
