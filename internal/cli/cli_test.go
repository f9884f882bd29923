package cli

import (
	"bytes"
	"strings"
	"testing"

	"quickhacker/internal/common/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordCommand(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"hash-password", "s3cret-pass"})

	require.NoError(t, cmd.Execute())
	hash := strings.TrimSpace(out.String())
	assert.Contains(t, hash, ".")
	assert.True(t, security.CheckPasswordHash("s3cret-pass", &hash))
}

func TestHashPasswordRequiresArgument(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"hash-password"})
	assert.Error(t, cmd.Execute())
}

func TestSubcommandsRegistered(t *testing.T) {
	cmd := NewRootCommand()
	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"migrate", "seed", "hash-password"} {
		assert.True(t, names[want], want)
	}
	seed, _, err := cmd.Find([]string{"seed"})
	require.NoError(t, err)
	assert.Equal(t, "fixtures/seed.yaml", seed.Flags().Lookup("file").DefValue)
}
