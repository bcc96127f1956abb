package pipeline

import (
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/defuzz"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/membership"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/metrics"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/rules"
)

// ErrNotConfigured is returned when evaluating before any rule base is installed.
var ErrNotConfigured = errors.New("pipeline not configured")

// #region system
// System is the host-facing facade: configure once, swap atomically, evaluate
// per tick. An evaluation sees either the old or the new pipeline, never a mix.
type System struct {
	active atomic.Pointer[Pipeline]
	log    *zap.Logger
}

// NewSystem returns an unconfigured system. log may be nil.
func NewSystem(log *zap.Logger) *System {
	if log == nil {
		log = zap.NewNop()
	}
	return &System{log: log}
}

// Configure compiles and installs a new pipeline.
func (s *System) Configure(bank *membership.Bank, rb rules.RuleBase, method defuzz.Method) error {
	p, err := Compile(bank, rb, method)
	if err != nil {
		metrics.RuleBaseRejects.Inc()
		return err
	}
	s.Swap(p)
	return nil
}

// Swap installs p and returns the pipeline it replaced (nil on first install).
// A nil p is refused: the active pipeline stays and is returned.
func (s *System) Swap(p *Pipeline) *Pipeline {
	if p == nil {
		s.log.Warn("refusing to install nil pipeline", zap.String("version", s.Version()))
		return s.active.Load()
	}
	prev := s.active.Swap(p)
	metrics.RuleBaseSwaps.Inc()
	metrics.RuleBaseRules.Set(float64(p.rules.Len()))
	fields := []zap.Field{
		zap.String("version", p.version),
		zap.Int("simple", len(p.rules.Simple)),
		zap.Int("logical", len(p.rules.Logical)),
		zap.Stringer("method", p.method),
	}
	if prev != nil {
		fields = append(fields, zap.String("previous", prev.version))
	}
	s.log.Info("rule base installed", fields...)
	return prev
}

// Current returns the active pipeline, or nil.
func (s *System) Current() *Pipeline {
	return s.active.Load()
}

// Version is the active rule-base version id.
func (s *System) Version() string {
	if p := s.active.Load(); p != nil {
		return p.version
	}
	return ""
}

// #endregion system

// #region evaluate
// Evaluate runs the active pipeline on one crisp input.
func (s *System) Evaluate(in fuzzy.CrispInput) (fuzzy.CrispOutput, error) {
	p := s.active.Load()
	if p == nil {
		return fuzzy.CrispOutput{}, ErrNotConfigured
	}
	start := time.Now()
	out := p.Evaluate(in)
	s.observe(p, out, start)
	return out, nil
}

// EvaluateTrace runs the active pipeline and keeps every stage.
func (s *System) EvaluateTrace(in fuzzy.CrispInput) (Result, error) {
	p := s.active.Load()
	if p == nil {
		return Result{}, ErrNotConfigured
	}
	start := time.Now()
	res := p.EvaluateTrace(in)
	s.observe(p, res.Output, start)
	metrics.RulesFired.Set(float64(len(res.Trace.Fired())))
	return res, nil
}

func (s *System) observe(p *Pipeline, out fuzzy.CrispOutput, start time.Time) {
	metrics.EvaluationSeconds.Observe(time.Since(start).Seconds())
	metrics.Evaluations.WithLabelValues(p.method.String()).Inc()
	for _, o := range fuzzy.Outputs {
		if !out.Valid(o) {
			metrics.InvalidOutputs.WithLabelValues(o.String()).Inc()
		}
	}
	if ce := s.log.Check(zap.DebugLevel, "evaluated"); ce != nil {
		ce.Write(
			zap.String("version", p.version),
			zap.Float64s("output", out[:]),
		)
	}
}

// #endregion evaluate
