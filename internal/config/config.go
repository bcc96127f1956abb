package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/defuzz"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/eval"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/gate"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/kart"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/logging"
)

// #region types
// Config is the controller's application configuration.
type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	Server     ServerConfig     `yaml:"server"`
	Watch      WatchConfig      `yaml:"watch"`
	Eval       eval.EvalConfig  `yaml:"eval"`
	Gate       gate.GateConfig  `yaml:"gate"`
	Kart       kart.Scales      `yaml:"kart"`
	Logging    logging.Config   `yaml:"logging"`
}

// ControllerConfig locates the store and the rule-base file.
type ControllerConfig struct {
	DBPath         string `yaml:"db_path" validate:"required"`
	RuleBase       string `yaml:"rule_base"`       // empty: use the stored or built-in rule base
	Method         string `yaml:"method"`          // overrides the document's method when set
	LogEvaluations bool   `yaml:"log_evaluations"` // write every tick to evaluation_log
}

// ServerConfig holds listen addresses. An empty address disables the listener.
type ServerConfig struct {
	GRPCAddr    string `yaml:"grpc_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// WatchConfig controls rule-base hot reload.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce" validate:"gte=0"`
}

// #endregion types

// #region defaults
// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Controller: ControllerConfig{
			DBPath:         "fuzzy_kart.db",
			LogEvaluations: true,
		},
		Server: ServerConfig{
			GRPCAddr:    "localhost:50061",
			MetricsAddr: "127.0.0.1:9108",
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 250 * time.Millisecond,
		},
		Eval:    eval.DefaultEvalConfig(),
		Gate:    gate.DefaultGateConfig(),
		Kart:    kart.DefaultScales(),
		Logging: logging.DefaultConfig(),
	}
}

// #endregion defaults

// #region load
// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg as YAML.
func Save(path string, cfg Config) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// #endregion load

// #region env
// ApplyEnv overrides fields from FUZZY_* environment variables.
func (c *Config) ApplyEnv() {
	c.Controller.DBPath = envOr("FUZZY_DB", c.Controller.DBPath)
	c.Controller.RuleBase = envOr("FUZZY_RULES", c.Controller.RuleBase)
	c.Controller.Method = envOr("FUZZY_METHOD", c.Controller.Method)
	c.Server.GRPCAddr = envOr("FUZZY_GRPC_ADDR", c.Server.GRPCAddr)
	c.Server.MetricsAddr = envOr("FUZZY_METRICS_ADDR", c.Server.MetricsAddr)
	c.Logging.Level = envOr("FUZZY_LOG_LEVEL", c.Logging.Level)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion env

// #region validate
var validate = validator.New()

// Validate checks field constraints and the method override.
func (c *Config) Validate() error {
	var errs []error
	if err := validate.Struct(c); err != nil {
		errs = append(errs, err)
	}
	if c.Controller.Method != "" {
		if _, err := defuzz.ParseMethod(c.Controller.Method); err != nil {
			errs = append(errs, fmt.Errorf("controller.method: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// #endregion validate
