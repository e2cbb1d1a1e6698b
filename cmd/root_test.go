package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	// Verify expected subcommands are registered.
	expected := []string{"render", "breaks", "snapshot", "serve", "attributes"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "housing-map", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRenderCommand_Flags(t *testing.T) {
	for _, name := range []string{"attribute", "out-dir", "commands"} {
		assert.NotNil(t, renderCmd.Flags().Lookup(name), "render should have --%s flag", name)
	}
	assert.Equal(t, ".", renderCmd.Flags().Lookup("out-dir").DefValue)
}

func TestBreaksCommand_Flags(t *testing.T) {
	flag := breaksCmd.Flags().Lookup("format")
	require.NotNil(t, flag, "breaks command should have --format flag")
	assert.Equal(t, "table", flag.DefValue)
}

func TestSnapshotCommand_Flags(t *testing.T) {
	flag := snapshotCmd.Flags().Lookup("out")
	require.NotNil(t, flag, "snapshot command should have --out flag")
	assert.Equal(t, "chart.png", flag.DefValue)
	assert.Equal(t, "8", snapshotCmd.Flags().Lookup("width").DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}
