// Package config assembles the CLI-side application configuration from
// defaults, an optional YAML file, an optional .env file and environment
// variables, in that order. The solver core itself only ever receives the
// resulting explicit SolverConfig value.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/solvereign/solvereign/internal/domain"
	"github.com/solvereign/solvereign/internal/gate"
)

// AppConfig is the full CLI configuration.
type AppConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogPretty bool   `yaml:"log_pretty"`

	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`

	Solver domain.SolverConfig `yaml:"solver"`

	// MaxMemMB caps the process address space where the platform supports
	// it; 0 disables the ceiling.
	MaxMemMB int `yaml:"max_mem_mb"`

	// Gate rules evaluated against the finished plan's KPIs.
	Gate []gate.Rule `yaml:"gate"`

	AuditSensitivity bool `yaml:"audit_sensitivity"`
}

// Default returns the configuration used when no file and no environment
// are present.
func Default() AppConfig {
	cfg := AppConfig{
		LogLevel: "info",
		Solver:   domain.DefaultConfig(),
		Gate:     gate.DefaultRules(),
		MaxMemMB: 6144,
	}
	return cfg
}

// Load builds the configuration. A missing config file is not an error;
// a present but unparsable one is.
func Load(path string) (AppConfig, error) {
	// .env is a developer convenience; absence is normal.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		buffer, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, err
			}
			log.Debug().Str("path", path).Msg("no config file, using defaults")
		} else if err := yaml.Unmarshal(buffer, &cfg); err != nil {
			return cfg, domain.NewDomainError(domain.ErrCodeInvalidInput, "config file does not parse", err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays the environment on top of file values.
func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("SOLVEREIGN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SOLVEREIGN_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SOLVEREIGN_ENGINE"); v != "" {
		cfg.Solver.Engine = domain.Engine(v)
	}
	if v, ok := envInt("SOLVEREIGN_MAX_MEM_MB"); ok {
		cfg.MaxMemMB = v
	}
	if v, ok := envInt("SOLVEREIGN_FREEZE_MINUTES"); ok {
		cfg.Solver.FreezeMinutes = v
	}
	if v, ok := envInt("SOLVEREIGN_MAX_CG_ROUNDS"); ok {
		cfg.Solver.MaxCGRounds = v
	}
	if v, ok := envBool("SOLVEREIGN_ENABLE_LNS"); ok {
		cfg.Solver.EnableLNS = v
	}
	if v, ok := envBool("SOLVEREIGN_FREEZE_OVERRIDE_ALLOWED"); ok {
		cfg.Solver.FreezeOverrideAllowed = v
	}
	if v, ok := envBool("SOLVEREIGN_AUDIT_SENSITIVITY"); ok {
		cfg.AuditSensitivity = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("ignoring non-integer environment value")
		return 0, false
	}
	return n, true
}

func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("ignoring non-boolean environment value")
		return false, false
	}
	return b, true
}
