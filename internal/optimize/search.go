// Package optimize searches greenhouse parameters with CMA-ES.
package optimize

import (
	"context"
	"errors"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/optimize"

	"github.com/lox/greenhouse/internal/greenhouse"
	"github.com/lox/greenhouse/internal/metrics"
)

// DefaultPenalty is the value assigned to an unstable or failed trial.
const DefaultPenalty = 1e6

var ErrNoTrials = errors.New("optimize: no trial completed")

// Trial is one evaluated parameter set.
type Trial struct {
	Number   int
	Params   map[string]float64
	Value    float64
	Unstable bool
	Err      error
	Elapsed  time.Duration
}

// Search drives the minimisation of an Objective over Bounds, each trial
// running on its own copy of Base.
type Search struct {
	Base      *greenhouse.Config
	Bounds    []Bound
	Objective Objective

	Trials      int
	Concurrency int
	Penalty     float64
	StepSize    float64

	// OnTrial is called after every trial, serialised.
	OnTrial func(Trial) error
	Log     logrus.FieldLogger
}

// Best is the lowest scoring trial and the full configuration it used.
type Best struct {
	Trial  Trial
	Config *greenhouse.Config
	Trials int
}

// Run evaluates up to s.Trials parameter sets and returns the best.
func (s *Search) Run(ctx context.Context) (Best, error) {
	if s.Base == nil || s.Objective == nil {
		return Best{}, errors.New("optimize: search needs a base config and objective")
	}
	if len(s.Bounds) == 0 {
		return Best{}, errors.New("optimize: no bounds")
	}
	for _, b := range s.Bounds {
		if err := b.check(); err != nil {
			return Best{}, err
		}
	}
	log := s.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	penalty := s.Penalty
	if penalty == 0 {
		penalty = DefaultPenalty
	}
	workers := s.Concurrency
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	trials := s.Trials
	if trials <= 0 {
		trials = 100
	}
	step := s.StepSize
	if step == 0 {
		step = 1
	}
	name := s.Objective.Name()

	var (
		mu       sync.Mutex
		count    int
		best     Trial
		haveBest bool
		cbErr    error
	)

	eval := func(x []float64) float64 {
		mu.Lock()
		count++
		n := count
		mu.Unlock()

		t := Trial{Number: n, Params: params(s.Bounds, x)}
		start := time.Now()
		t.Value, t.Unstable, t.Err = s.evaluate(ctx, t.Params)
		t.Elapsed = time.Since(start)

		outcome := "ok"
		switch {
		case t.Err != nil:
			outcome = "error"
			t.Value = penalty
		case t.Unstable:
			outcome = "unstable"
			t.Value = penalty
		case math.IsNaN(t.Value):
			outcome = "error"
			t.Value = penalty
		}
		metrics.TrialsTotal.WithLabelValues(name, outcome).Inc()

		mu.Lock()
		defer mu.Unlock()
		if !haveBest || t.Value < best.Value {
			best, haveBest = t, true
			metrics.BestObjective.WithLabelValues(name).Set(t.Value)
			log.WithFields(logrus.Fields{
				"trial": t.Number,
				"value": t.Value,
			}).Info("New best trial")
		}
		log.WithFields(logrus.Fields{
			"trial":   t.Number,
			"value":   t.Value,
			"outcome": outcome,
			"elapsed": t.Elapsed.Round(time.Millisecond),
		}).Debug("Trial finished")
		if s.OnTrial != nil && cbErr == nil {
			cbErr = s.OnTrial(t)
		}
		return t.Value
	}

	problem := optimize.Problem{Func: eval}
	settings := &optimize.Settings{
		FuncEvaluations: trials,
		Concurrent:      workers,
		Converger:       optimize.NeverTerminate{},
	}
	method := &optimize.CmaEsChol{InitStepSize: step}

	log.WithFields(logrus.Fields{
		"objective": name,
		"trials":    trials,
		"workers":   workers,
		"params":    len(s.Bounds),
	}).Info("Starting search")

	res, err := optimize.Minimize(problem, make([]float64, len(s.Bounds)), settings, method)
	if res != nil {
		log.WithField("status", res.Status).Debug("Search terminated")
	}
	if err := ctx.Err(); err != nil {
		return Best{}, err
	}
	if cbErr != nil {
		return Best{}, cbErr
	}
	if !haveBest {
		if err != nil {
			return Best{}, err
		}
		return Best{}, ErrNoTrials
	}

	cfg := s.Base.Clone()
	if err := cfg.ApplyOverrides(best.Params); err != nil {
		return Best{}, err
	}
	return Best{Trial: best, Config: cfg, Trials: count}, nil
}

func (s *Search) evaluate(ctx context.Context, p map[string]float64) (float64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	cfg := s.Base.Clone()
	if err := cfg.ApplyOverrides(p); err != nil {
		return 0, false, err
	}
	if err := cfg.Validate(); err != nil {
		return 0, true, nil
	}
	return s.Objective.Evaluate(ctx, cfg)
}
