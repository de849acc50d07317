package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandsRequireDatabaseURL(t *testing.T) {
	for _, args := range [][]string{
		{"migrate", "up"},
		{"migrate", "down", "--steps", "1"},
		{"migrate", "version"},
		{"sweep-leases"},
		{"bootstrap-admin", "--email", "root@example.com"},
	} {
		t.Run(args[0], func(t *testing.T) {
			_, err := execute(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "DATABASE_URL")
		})
	}
}

func TestBootstrapAdminRequiresEmail(t *testing.T) {
	_, err := execute(t, "bootstrap-admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
}

func TestUnknownArgsRejected(t *testing.T) {
	_, err := execute(t, "sweep-leases", "extra")
	assert.Error(t, err)
}
