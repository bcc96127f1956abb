package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"FUZZY_DB", "FUZZY_RULES", "FUZZY_METHOD", "FUZZY_GRPC_ADDR", "FUZZY_METRICS_ADDR", "FUZZY_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_OverlaysFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
controller:
  db_path: /tmp/k.db
  rule_base: rules.toml
  method: maximum
watch:
  debounce: 1s
eval:
  steps: 3
kart:
  high_speed: 20
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/k.db", cfg.Controller.DBPath)
	require.Equal(t, "rules.toml", cfg.Controller.RuleBase)
	require.Equal(t, "maximum", cfg.Controller.Method)
	require.Equal(t, time.Second, cfg.Watch.Debounce)
	require.Equal(t, 3, cfg.Eval.Steps)
	require.Equal(t, 20.0, cfg.Kart.HighSpeed)
	// untouched sections keep their defaults
	require.Equal(t, DefaultConfig().Server, cfg.Server)
	require.Equal(t, DefaultConfig().Eval.MinCoverage, cfg.Eval.MinCoverage)
}

func TestLoad_EmptyFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FUZZY_DB", "env.db")
	t.Setenv("FUZZY_RULES", "env.yaml")
	t.Setenv("FUZZY_GRPC_ADDR", ":1")
	t.Setenv("FUZZY_METRICS_ADDR", ":2")
	t.Setenv("FUZZY_METHOD", "center_of_mass")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, "env.db", cfg.Controller.DBPath)
	require.Equal(t, "env.yaml", cfg.Controller.RuleBase)
	require.Equal(t, ":1", cfg.Server.GRPCAddr)
	require.Equal(t, ":2", cfg.Server.MetricsAddr)
	require.Equal(t, "center_of_mass", cfg.Controller.Method)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "controller:\n  db: x\n"},
		{"bad method", "controller:\n  method: mean\n"},
		{"too few steps", "eval:\n  steps: 1\n"},
		{"coverage above one", "eval:\n  min_coverage: 1.5\n"},
		{"zero min rules", "gate:\n  min_rules: 0\n"},
		{"retired gate floor", "gate:\n  min_coverage: 0.25\n"},
		{"empty db path", "controller:\n  db_path: \"\"\n"},
		{"not yaml", "controller: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	want := DefaultConfig()
	want.Controller.RuleBase = "kart.yaml"
	want.Watch.Debounce = 2 * time.Second
	want.Logging.Format = "json"

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
