package cli

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
	assert.Equal(t, "Print the version number", versionCmd.Short)
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	defer func() { version = originalVersion }()
	SetVersion("1.2.3")

	out, err := executeCommand(t, nil, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "tabula version 1.2.3")
	assert.Contains(t, out, "mcp server")
}

func TestVersionCmd_JSON(t *testing.T) {
	originalVersion := version
	defer func() { version = originalVersion }()
	SetVersion("2.0.0")

	out, err := executeCommand(t, nil, "version", "-o", "json")

	require.NoError(t, err)
	var info buildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "2.0.0", info.Version)
	assert.Equal(t, runtime.Version(), info.Go)
	assert.NotEmpty(t, info.MCPVersion)
}

func TestSetVersion_IgnoresEmpty(t *testing.T) {
	originalVersion := version
	defer func() { version = originalVersion }()
	version = "dev"

	SetVersion("")

	assert.Equal(t, "dev", version)
}
