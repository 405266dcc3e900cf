package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		_ = rootCmd.PersistentFlags().Set("config", "")
		_ = runCmd.Flags().Set("input", "")
		_ = runCmd.Flags().Set("thread", "")
		_ = runCmd.Flags().Set("stream", "false")
		_ = graphCmd.Flags().Set("format", "mermaid")
	})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestFlowsCommand(t *testing.T) {
	out, err := execute(t, "flows")
	require.NoError(t, err)
	assert.Contains(t, out, "pipeline")
	assert.Contains(t, out, "review")
	assert.Contains(t, out, "chat")
}

func TestRunCommand(t *testing.T) {
	out, err := execute(t, "run", "pipeline", "--input", `{"text":"A B"}`)
	require.NoError(t, err)

	var state map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.Equal(t, "a b", state["text"])
	assert.Equal(t, float64(2), state["count"])
}

func TestRunCommand_FileThreads(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "harbor.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("checkpointer:\n  kind: file\n  dir: "+filepath.Join(dir, "threads")+"\n"), 0o644))

	_, err := execute(t, "--config", cfgPath, "run", "review", "--thread", "t1", "--stream=false")
	require.NoError(t, err)

	out, err := execute(t, "--config", cfgPath, "threads", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "- t1")
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "pipeline: ok")
}

func TestGraphCommand(t *testing.T) {
	out, err := execute(t, "graph", "review")
	require.NoError(t, err)
	assert.Contains(t, out, `critique{{"critique <br/> ⏱️ 1s"}}`)

	_, err = execute(t, "graph", "review", "--format", "svg")
	assert.Error(t, err)
}

func TestRunCommand_Stream(t *testing.T) {
	out, err := execute(t, "run", "pipeline", "--stream", "--input", `{"text":" A B "}`)
	require.NoError(t, err)
	assert.Contains(t, out, "step 1: trim -> lower (changed: text, trace)")
	assert.Contains(t, out, "step 3: split -> end (changed: count, trace, words)")
}
