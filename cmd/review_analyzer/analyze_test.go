package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCommand_MissingInput(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "analyze", "--api-key", "test-key")
	cmd.Env = append(os.Environ(), "GEMINI_API_KEY=")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "--input is required")
}

func TestAnalyzeCommand_MissingAPIKey(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "reviews.csv")
	require.NoError(t, os.WriteFile(input, []byte("recommendationid,review_text,voted_up\n1,ok,True\n"), 0644))

	cmd := exec.Command(binaryPath, "analyze", "--input", input)
	cmd.Env = []string{"PATH=" + os.Getenv("PATH")}
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "GEMINI_API_KEY")
}

func TestAnalyzeCommand_InvalidResumePolicy(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "reviews.csv")
	require.NoError(t, os.WriteFile(input, []byte("recommendationid,review_text,voted_up\n1,ok,True\n"), 0644))

	cmd := exec.Command(binaryPath, "analyze",
		"--input", input,
		"--api-key", "test-key",
		"--resume", "maybe")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "Resume")
}

func TestAnalyzeCommand_BadConfigFile(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "analyze", "--config", "/nonexistent/config.json")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "failed to load config")
}
