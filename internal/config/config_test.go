package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.json")
	content := `{
		"input": "reviews.csv",
		"workers": 8,
		"request_spacing_ms": 250,
		"resume": "continue"
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "reviews.csv", cfg.Input)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 250, cfg.RequestSpacingMS)
	assert.Equal(t, "continue", cfg.Resume)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{ not json"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestValidate(t *testing.T) {
	tmpDir := t.TempDir()
	existing := filepath.Join(tmpDir, "reviews.csv")
	require.NoError(t, os.WriteFile(existing, []byte("recommendationid,review_text,voted_up\n"), 0644))

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid config",
			cfg:  Config{Input: existing, Workers: 4, Resume: "continue"},
		},
		{
			name: "empty config",
			cfg:  Config{},
		},
		{
			name:    "workers out of range",
			cfg:     Config{Workers: 200},
			wantErr: "Workers",
		},
		{
			name:    "bad resume policy",
			cfg:     Config{Resume: "maybe"},
			wantErr: "Resume",
		},
		{
			name:    "input file missing",
			cfg:     Config{Input: filepath.Join(tmpDir, "missing.csv")},
			wantErr: "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Input: "reviews.csv", Workers: 8}
	merged := cfg.MergeWithDefaults(Baseline())

	// Explicit values survive.
	assert.Equal(t, "reviews.csv", merged.Input)
	assert.Equal(t, 8, merged.Workers)

	// Unset values take the baseline.
	assert.Equal(t, DefaultOutputDir, merged.OutputDir)
	assert.Equal(t, DefaultProgressFile, merged.ProgressFile)
	assert.Equal(t, DefaultRequestSpacingMS, merged.RequestSpacingMS)
	assert.Equal(t, DefaultMaxAttempts, merged.MaxAttempts)
	assert.Equal(t, DefaultSaveInterval, merged.SaveInterval)

	// Resume stays empty so the CLI knows to prompt.
	assert.Empty(t, merged.Resume)
}

func TestMergeWithDefaults_FullOverride(t *testing.T) {
	cfg := Config{
		Input:            "a.csv",
		OutputDir:        "reports",
		ProgressFile:     "p.json",
		Workers:          2,
		RequestSpacingMS: 100,
		MaxAttempts:      5,
		SaveInterval:     1,
		SampleSize:       50,
		SampleSeed:       7,
		Resume:           "restart",
	}
	merged := cfg.MergeWithDefaults(Baseline())
	assert.Equal(t, cfg, merged)
}
