package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestRootRegistersSubcommands(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"scan", "serve", "bridge", "tui", "config"})
}

func TestScanCommandJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte("import os\n"), 0o644))

	out, err := runCLI(t, "scan", dir, "--json")
	require.NoError(t, err)

	var result struct {
		Metadata struct {
			TotalFiles int `json:"total_files"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1, result.Metadata.TotalFiles)
}

func TestScanCommandWritesAgentContext(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte("import os\n"), 0o644))

	out, err := runCLI(t, "scan", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "health")

	data, err := os.ReadFile(filepath.Join(dir, AgentContextFilename))
	require.NoError(t, err)
	assert.Contains(t, string(data), "CODEBASE RISK MAP")
}

func TestScanCommandRejectsMissingDir(t *testing.T) {
	_, err := runCLI(t, "scan", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestConfigGetAndSet(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	run := func(args ...string) (string, error) {
		root := NewRootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs(append([]string{"--config", cfg}, args...))
		err := root.Execute()
		return out.String(), err
	}

	out, err := run("config", "get", "model")
	require.NoError(t, err)
	assert.Contains(t, out, "deepseek-chat")

	_, err = run("config", "set", "model", "deepseek-reasoner")
	require.NoError(t, err)

	out, err = run("config", "get", "model")
	require.NoError(t, err)
	assert.Contains(t, out, "deepseek-reasoner")

	_, err = run("config", "get", "bogus")
	assert.Error(t, err)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "(not set)", maskKey(""))
	assert.Equal(t, "***", maskKey("abc"))
	assert.Equal(t, "**********3abc", maskKey("sk-test-123abc"))
}
