package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCommand_NoProgressFile(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()

	cmd := exec.Command(binaryPath, "status", "--progress-file", filepath.Join(tmpDir, "missing.json"))
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "no progress file")
}

func TestStatusCommand_ShowsCounters(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()
	progressPath := filepath.Join(tmpDir, "progress.json")
	content := `{
		"schema_version": 1,
		"run_id": "test-run",
		"started_at": "2026-08-01T10:00:00Z",
		"saved_at": "2026-08-01T10:05:00Z",
		"total": 4,
		"counters": {"attempted": 3, "succeeded": 2, "failed": 1},
		"usage": {"input_tokens": 1200, "output_tokens": 300},
		"results": {
			"a": {"record_id": "a", "status": "succeeded", "labels": ["story"], "attempts": 1},
			"b": {"record_id": "b", "status": "succeeded", "labels": ["gameplay"], "attempts": 1},
			"c": {"record_id": "c", "status": "failed", "failure_reason": "attempts_exceeded", "attempts": 3}
		}
	}`
	require.NoError(t, os.WriteFile(progressPath, []byte(content), 0644))

	cmd := exec.Command(binaryPath, "status", "--progress-file", progressPath)
	output, err := cmd.CombinedOutput()

	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, string(output), "test-run")
	assert.Contains(t, string(output), "2 succeeded")
	assert.Contains(t, string(output), "1 failed")
	assert.Contains(t, string(output), "attempts_exceeded: 1")
}

func TestStatusCommand_CorruptFile(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()
	progressPath := filepath.Join(tmpDir, "progress.json")
	require.NoError(t, os.WriteFile(progressPath, []byte("not json"), 0644))

	cmd := exec.Command(binaryPath, "status", "--progress-file", progressPath)
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "corrupt")
}
