package runner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsh-ncursed/corvus/internal/runner"
)

func TestOSRunnerRun(t *testing.T) {
	tests := map[string]struct {
		name   string
		args   []string
		expErr string
	}{
		"Successful command returns nil": {
			name: "true",
		},
		"Failing command surfaces its stderr": {
			name:   "sh",
			args:   []string{"-c", "echo boom >&2; exit 1"},
			expErr: "boom",
		},
		"Failing command with silent stderr falls back to the exit error": {
			name:   "sh",
			args:   []string{"-c", "exit 3"},
			expErr: "exit status 3",
		},
		"Unspawnable command reports the spawn failure": {
			name:   "/nonexistent-corvus-binary",
			expErr: "no such file or directory",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := runner.NewOSRunner()

			err := r.Run(context.Background(), tt.name, tt.args...)

			if tt.expErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
