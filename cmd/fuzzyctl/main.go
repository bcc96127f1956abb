package main

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/config"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/logging"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/orchestrator"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/ruleset"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/store"
)

// Exit codes.
const (
	exitOK       = 0
	exitRejected = 1
	exitError    = 2
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, orchestrator.ErrRejected) {
			os.Exit(exitRejected)
		}
		os.Exit(exitError)
	}
	os.Exit(exitOK)
}

// #region root

// cliOptions are the persistent flags shared by every subcommand.
type cliOptions struct {
	configPath string
	dbPath     string
	jsonOut    bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:          "fuzzyctl",
		Short:        "Manage and exercise fuzzy kart rule bases",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "fuzzy_kart.yaml", "controller config file")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "rule-base store (overrides the config)")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print JSON instead of text")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newImportCmd(opts),
		newRollbackCmd(opts),
		newEvalCmd(opts),
		newCoverageCmd(opts),
		newCompareCmd(opts),
	)
	return root
}

// #endregion root

// #region helpers

func (o *cliOptions) config() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.dbPath != "" {
		cfg.Controller.DBPath = o.dbPath
	}
	return cfg, nil
}

func (o *cliOptions) logger(cfg config.Config) (*zap.Logger, error) {
	lc := cfg.Logging
	lc.Level = "warn"
	if o.verbose {
		lc.Level = "debug"
	}
	return logging.New(lc)
}

// orchestrator opens the store named by the config. The caller closes the store.
func (o *cliOptions) orchestrator() (*orchestrator.Orchestrator, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	log, err := o.logger(cfg)
	if err != nil {
		return nil, err
	}
	st, err := store.NewStore(cfg.Controller.DBPath)
	if err != nil {
		return nil, err
	}
	orch, err := orchestrator.New(st, pipeline.NewSystem(log), orchestrator.Options{
		Eval:   cfg.Eval,
		Gate:   cfg.Gate,
		Method: cfg.Controller.Method,
	}, log)
	if err != nil {
		st.Close()
		return nil, err
	}
	return orch, nil
}

// pipelineFor compiles path, or the store's active version when path is
// empty, or the built-in default when the store has nothing active.
func (o *cliOptions) pipelineFor(path string) (*pipeline.Pipeline, error) {
	if path != "" {
		doc, _, err := ruleset.Load(path)
		if err != nil {
			return nil, err
		}
		return doc.Compile()
	}
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	st, err := store.NewStore(cfg.Controller.DBPath)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	rec, err := st.GetCurrent()
	if errors.Is(err, store.ErrNoActive) {
		doc, err := ruleset.Default()
		if err != nil {
			return nil, err
		}
		return doc.Compile()
	}
	if err != nil {
		return nil, err
	}
	return rec.Pipeline()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func optionalArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// #endregion helpers
