package prompts_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	"github.com/KirkDiggler/chimera-protocol/internal/prompts"
)

func TestDefaultIsComplete(t *testing.T) {
	set := prompts.Default()
	require.NoError(t, set.Validate())
	assert.Contains(t, set.DM.System, "CHIMERA PROTOCOL")
	assert.Contains(t, set.Steps.Turn, "{{exits}}")
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.toml")
	require.NoError(t, os.WriteFile(path, []byte("[dm]\nsystem = \"You are terse.\"\n"), 0o600))

	set, err := prompts.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "You are terse.", set.DM.System)
	assert.Equal(t, prompts.Default().PlayerAI.System, set.PlayerAI.System)
}

func TestParseRejectsIncomplete(t *testing.T) {
	_, err := prompts.Parse([]byte("[dm]\nsystem = \"x\"\n"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = prompts.Parse([]byte("[dm\n"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestRender(t *testing.T) {
	out := prompts.Render("At {{node}} with {{who}} and {{unknown}}", map[string]string{
		"node": "TP_N1",
		"who":  "a fixer",
	})
	assert.Equal(t, "At TP_N1 with a fixer and {{unknown}}", out)
}
