package cli

import (
	"testing"

	"github.com/havrydotdev/catclient/pkg/mc"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("CATCLIENT_DISCORD_PRESENCE", "false")
	pterm.DisableOutput()
	t.Cleanup(pterm.EnableOutput)

	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestRootCommands(t *testing.T) {
	cmd := NewRootCmd()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"versions", "install", "uninstall", "launch", "java"} {
		assert.Contains(t, names, want)
	}
}

func TestVersionsInstalledEmpty(t *testing.T) {
	require.NoError(t, run(t, "versions", "--installed", "--game-dir", t.TempDir()))
}

func TestUninstallUnknownVersion(t *testing.T) {
	err := run(t, "uninstall", "1.8.9", "--game-dir", t.TempDir())
	assert.ErrorIs(t, err, mc.ErrUnknownVersion)
}

func TestArgumentValidation(t *testing.T) {
	dir := t.TempDir()

	assert.Error(t, run(t, "install", "--game-dir", dir))
	assert.Error(t, run(t, "java", "seventeen", "--game-dir", dir))
	assert.Error(t, run(t, "versions", "a", "b", "--game-dir", dir))
}
