package migrations

import (
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	require.NoError(t, Setup())

	found, err := goose.CollectMigrations(Dir, 0, goose.MaxVersion)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(1), found[0].Version)
}

func TestRun_RejectsBadCommands(t *testing.T) {
	err := Run(nil, "sideways")
	require.Error(t, err)
	assert.EqualError(t, err, "unknown command: sideways. Available commands: up, down, status, version, create")

	assert.ErrorIs(t, Run(nil, "create"), errMissingName)
	assert.ErrorIs(t, Run(nil, "create", ""), errMissingName)
}

func TestCommandsAreAccepted(t *testing.T) {
	for _, command := range commands {
		args := []string{}
		if command == "create" {
			args = append(args, "add_index")
		}
		assert.NoError(t, checkCommand(command, args), command)
	}
}
