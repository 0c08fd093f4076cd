package cli

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHasSolveSubcommand(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Contains(t, names, "solve")
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
}

func TestSolveCommandFlags(t *testing.T) {
	cmd := newSolveCommand()
	for _, name := range []string{"channel", "platform", "lock-file", "no-detect-virtual"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestSolveCommandRequiresAtLeastOneSpec(t *testing.T) {
	cmd := newSolveCommand()
	require.Error(t, cmd.Args(cmd, nil))
}

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid argument", errbuilder.New().WithCode(errbuilder.CodeInvalidArgument).WithMsg("bad spec"), 2},
		{"failed precondition", errbuilder.New().WithCode(errbuilder.CodeFailedPrecondition).WithMsg("conflict detected"), 3},
		{"not found", errbuilder.New().WithCode(errbuilder.CodeNotFound).WithMsg("no dependency available"), 4},
		{"internal", errbuilder.New().WithCode(errbuilder.CodeInternal).WithMsg("no packages found that can be chosen"), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCodeForError(tt.err))
		})
	}
}
