package orchestrator

// #region imports
import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/defuzz"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/eval"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/gate"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/logging"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/metrics"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/ruleset"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/store"
)

// #endregion imports

// #region orchestrator-struct

// Orchestrator ties the version store, the coverage sweep, the gate and the
// live system together. Every path that changes the active rule base goes
// through it.
type Orchestrator struct {
	store *store.Store
	sys   *pipeline.System
	gate  *gate.Gate
	opts  Options
	log   *zap.Logger
}

// #endregion orchestrator-struct

// #region constructor

// New creates an orchestrator. log may be nil.
func New(st *store.Store, sys *pipeline.System, opts Options, log *zap.Logger) (*Orchestrator, error) {
	if opts.Method != "" {
		if _, err := defuzz.ParseMethod(opts.Method); err != nil {
			return nil, err
		}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		store: st,
		sys:   sys,
		gate:  gate.NewGate(opts.Gate),
		opts:  opts,
		log:   log,
	}, nil
}

// Store returns the backing version store.
func (o *Orchestrator) Store() *store.Store { return o.store }

// System returns the live system.
func (o *Orchestrator) System() *pipeline.System { return o.sys }

// #endregion constructor

// #region admit

// Admit runs a candidate document through compile, coverage and the gate.
// On commit the version is stored, activated and swapped in. A gate rejection
// returns the admission together with ErrRejected.
func (o *Orchestrator) Admit(data []byte, format ruleset.Format) (Admission, error) {
	parent := ""
	cur, err := o.store.GetCurrent()
	switch {
	case err == nil:
		parent = cur.VersionID
	case !errors.Is(err, store.ErrNoActive):
		return Admission{}, err
	}

	rec, err := store.NewRecord(data, format, parent)
	if err != nil {
		return o.reject(Admission{Decision: o.gate.Evaluate(err, eval.EvalResult{}, 0)})
	}
	if parent != "" && rec.Checksum == cur.Checksum {
		o.log.Info("rule base unchanged", zap.String("version", cur.VersionID))
		return Admission{Record: cur, Unchanged: true, Decision: gate.GateDecision{
			Action: gate.ActionCommit,
			Reason: "unchanged",
		}}, nil
	}

	p, err := o.compile(rec)
	if err != nil {
		return o.reject(Admission{Decision: o.gate.Evaluate(err, eval.EvalResult{}, 0)})
	}

	result := eval.Run(p, o.opts.Eval)
	adm := Admission{
		Decision: o.gate.Evaluate(nil, result, p.Rules().Len()),
		Eval:     result,
	}
	if adm.Decision.Action != gate.ActionCommit {
		return o.reject(adm)
	}

	if err := o.store.CommitVersion(rec); err != nil {
		return adm, err
	}
	o.sys.Swap(p)
	if blob, err := json.Marshal(result); err != nil {
		o.log.Warn("encode coverage sweep", zap.String("version", rec.VersionID), zap.Error(err))
	} else if err := o.store.UpdateMetrics(rec.VersionID, string(blob)); err != nil {
		o.log.Warn("record coverage sweep", zap.String("version", rec.VersionID), zap.Error(err))
	} else {
		rec.MetricsJSON = string(blob)
	}

	adm.Record = rec
	o.log.Info("rule base admitted",
		zap.String("version", rec.VersionID),
		zap.String("parent", rec.ParentID),
		zap.String("name", rec.Name),
		zap.Float64("soft_score", adm.Decision.SoftScore),
	)
	return adm, nil
}

// AdmitFile reads path, infers the format from its extension and admits it.
func (o *Orchestrator) AdmitFile(path string) (Admission, error) {
	format, err := ruleset.FormatOf(path)
	if err != nil {
		return Admission{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Admission{}, fmt.Errorf("read rule base: %w", err)
	}
	return o.Admit(data, format)
}

func (o *Orchestrator) reject(adm Admission) (Admission, error) {
	metrics.RuleBaseRejects.Inc()
	fields := []zap.Field{zap.String("reason", adm.Decision.Reason)}
	for _, v := range adm.Decision.VetoSignals {
		fields = append(fields, zap.String(string(v.Type), v.Reason))
	}
	o.log.Warn("rule base rejected", fields...)
	return adm, fmt.Errorf("%w: %s", ErrRejected, adm.Decision.Reason)
}

// #endregion admit

// #region activate

// LoadActive compiles the stored active version and swaps it in.
func (o *Orchestrator) LoadActive() (store.Record, error) {
	rec, err := o.store.GetCurrent()
	if err != nil {
		return store.Record{}, err
	}
	p, err := o.compile(rec)
	if err != nil {
		return store.Record{}, err
	}
	o.sys.Swap(p)
	return rec, nil
}

// Rollback re-activates a stored version and swaps it in. The target is
// compiled first so a broken version never becomes active.
func (o *Orchestrator) Rollback(versionID string) (store.Record, error) {
	rec, err := o.store.GetVersion(versionID)
	if err != nil {
		return store.Record{}, err
	}
	p, err := o.compile(rec)
	if err != nil {
		return store.Record{}, err
	}
	if err := o.store.Rollback(versionID); err != nil {
		return store.Record{}, err
	}
	o.sys.Swap(p)
	o.log.Info("rolled back", zap.String("version", versionID))
	return rec, nil
}

// Bootstrap brings the system up. A configured rule-base file is admitted
// first; if it is rejected the previously active version is kept. With no
// file and no active version the embedded default is admitted.
func (o *Orchestrator) Bootstrap(path string) (store.Record, error) {
	if path != "" {
		adm, err := o.AdmitFile(path)
		if err == nil {
			if adm.Unchanged {
				return o.LoadActive()
			}
			return adm.Record, nil
		}
		rec, lerr := o.LoadActive()
		if lerr != nil {
			return store.Record{}, fmt.Errorf("bootstrap %s: %w", path, err)
		}
		o.log.Warn("keeping active rule base", zap.String("version", rec.VersionID), zap.Error(err))
		return rec, nil
	}

	active, err := o.store.HasActive()
	if err != nil {
		return store.Record{}, err
	}
	if active {
		return o.LoadActive()
	}
	o.log.Info("no active rule base, admitting default")
	adm, err := o.Admit(ruleset.DefaultSource(), ruleset.YAML)
	if err != nil {
		return store.Record{}, fmt.Errorf("bootstrap default: %w", err)
	}
	return adm.Record, nil
}

// Reload matches watch.ReloadFunc.
func (o *Orchestrator) Reload(_ context.Context, path string) error {
	_, err := o.AdmitFile(path)
	return err
}

// #endregion activate

// #region tick

// Tick evaluates one input against the live rule base and, when enabled,
// appends the result to the evaluation log.
func (o *Orchestrator) Tick(trigger string, in fuzzy.CrispInput) (pipeline.Result, error) {
	res, err := o.sys.EvaluateTrace(in)
	if err != nil {
		return pipeline.Result{}, err
	}
	if !o.opts.LogEvaluations {
		return res, nil
	}
	decision, reason := logging.Decide(res.Output)
	err = logging.LogEvaluation(o.store.DB(), logging.EvaluationEntry{
		VersionID:   res.Version,
		TriggerType: trigger,
		Inputs:      res.Input,
		Outputs:     res.Output,
		Firings:     res.Trace,
		Decision:    decision,
		Reason:      reason,
	})
	if err != nil {
		o.log.Warn("evaluation log", zap.Error(err))
	}
	return res, nil
}

// #endregion tick

// #region helpers

func (o *Orchestrator) compile(rec store.Record) (*pipeline.Pipeline, error) {
	p, err := rec.Pipeline()
	if err != nil {
		return nil, err
	}
	if o.opts.Method == "" {
		return p, nil
	}
	m, err := defuzz.ParseMethod(o.opts.Method)
	if err != nil {
		return nil, err
	}
	return p.WithMethod(m)
}

// #endregion helpers
