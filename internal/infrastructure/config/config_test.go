package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvereign/solvereign/internal/domain"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, domain.EngineBlockHeuristic, cfg.Solver.Engine)
	assert.Equal(t, 720, cfg.Solver.FreezeMinutes)
	assert.NotEmpty(t, cfg.Gate)
	assert.NoError(t, cfg.Solver.Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solvereign.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
solver:
  engine: column_generation
  max_weekly_hours: 48
  enable_lns: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, domain.EngineColumnGeneration, cfg.Solver.Engine)
	assert.Equal(t, 48, cfg.Solver.MaxWeeklyHours)
	assert.True(t, cfg.Solver.EnableLNS)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solvereign.yml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))

	t.Setenv("SOLVEREIGN_LOG_LEVEL", "error")
	t.Setenv("SOLVEREIGN_ENGINE", "column_generation")
	t.Setenv("SOLVEREIGN_FREEZE_MINUTES", "60")
	t.Setenv("SOLVEREIGN_ENABLE_LNS", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, domain.EngineColumnGeneration, cfg.Solver.Engine)
	assert.Equal(t, 60, cfg.Solver.FreezeMinutes)
	assert.True(t, cfg.Solver.EnableLNS)
}

func TestLoad_IgnoresMalformedEnvValues(t *testing.T) {
	t.Setenv("SOLVEREIGN_FREEZE_MINUTES", "soon")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 720, cfg.Solver.FreezeMinutes)
}

func TestLoad_RejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solvereign.yml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
