package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrangemylist/planner/internal/domain/entities"
)

func TestVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3", "abc123")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "planner 1.2.3")
	assert.Contains(t, out.String(), "Git Commit: abc123")
}

func TestImportDryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tasks:\n  - title: a\n  - title: b\nnotes:\n  - title: c\n"), 0o600))

	cmd := NewImportCommand(&ClientFlags{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--dry-run", path})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Would import 2 tasks, 1 notes, 0 events\n", out.String())
}

func TestImportDryRunRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tasks:\n  - priority: low\n"), 0o600))

	cmd := NewImportCommand(&ClientFlags{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--dry-run", path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task title is required")
}

func TestUserCreateRequiresFlags(t *testing.T) {
	cmd := NewUserCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"create", "--username", "ada"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username, email, and password are required")
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, arg := range []string{"0", "-1", "abc"} {
		_, err := parseID(arg)
		assert.Error(t, err, arg)
	}
}

func TestTailPosition(t *testing.T) {
	groups := entities.TaskGroups{
		Todo:       []entities.Task{{ID: 1}, {ID: 2}},
		InProgress: []entities.Task{},
	}

	assert.Equal(t, 1, tailPosition(groups, entities.TaskStatusInProgress))
	assert.Equal(t, 3, tailPosition(groups, entities.TaskStatusTodo))
	assert.Equal(t, 1, tailPosition(groups, entities.TaskStatusDone))
}
