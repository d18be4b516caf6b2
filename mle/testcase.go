package mle

import (
	"fmt"
	"math/rand/v2"

	"github.com/YuminosukeSato/pgmkit/core/parallel"
	"github.com/YuminosukeSato/pgmkit/pkg/errors"
	"github.com/YuminosukeSato/pgmkit/pkg/log"
)

// TestCase is a known generating distribution and the sample size to draw.
type TestCase struct {
	Family     Family
	TrueParams Params
	SampleSize int
}

// Result is one sample → estimate → self-check round trip.
type Result struct {
	Case       TestCase
	Sample     []float64
	Estimation *Estimation
	// Accuracy holds a percentage per parameter, see Accuracy.
	Accuracy map[string]float64
}

// DefaultTestCases returns one case per family.
func DefaultTestCases() []TestCase {
	return []TestCase{
		{Family: Normal, TrueParams: Params{ParamMean: 5, ParamVariance: 2}, SampleSize: 100},
		{Family: Poisson, TrueParams: Params{ParamLambda: 3}, SampleSize: 100},
		{Family: Binomial, TrueParams: Params{ParamN: 10, ParamP: 0.5}, SampleSize: 100},
		{Family: Exponential, TrueParams: Params{ParamLambda: 0.5}, SampleSize: 100},
	}
}

// Run draws the case's sample from rng, estimates it and scores the estimate.
func (tc TestCase) Run(rng *rand.Rand) (*Result, error) {
	sample, err := Sample(tc.Family, tc.TrueParams, tc.SampleSize, rng)
	if err != nil {
		return nil, err
	}
	est, err := Estimate(tc.Family, sample)
	if err != nil {
		return nil, err
	}
	return &Result{
		Case:       tc,
		Sample:     sample,
		Estimation: est,
		Accuracy:   Accuracy(tc.TrueParams, est.Params),
	}, nil
}

type suiteConfig struct {
	seed      uint64
	threshold int
	logger    log.Logger
}

// SuiteOption configures RunSuite.
type SuiteOption func(*suiteConfig)

// WithSeed sets the base seed. Case i uses the PCG stream (seed, i), so
// results do not depend on scheduling.
func WithSeed(seed uint64) SuiteOption {
	return func(c *suiteConfig) {
		c.seed = seed
	}
}

// WithParallelThreshold sets the number of cases above which RunSuite fans
// out across goroutines.
func WithParallelThreshold(n int) SuiteOption {
	return func(c *suiteConfig) {
		c.threshold = n
	}
}

// WithLogger routes the suite's debug output to l instead of the "mle"
// component logger.
func WithLogger(l log.Logger) SuiteOption {
	return func(c *suiteConfig) {
		c.logger = l
	}
}

// RunSuite runs independent test cases, concurrently once there are more
// than the parallel threshold (default 4). The first failing case, by index,
// is returned as the error.
func RunSuite(cases []TestCase, opts ...SuiteOption) ([]*Result, error) {
	cfg := suiteConfig{seed: 1, threshold: 4, logger: logger()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cases) == 0 {
		return nil, errors.NewEmptyDataError("mle.RunSuite", "cases")
	}

	results := make([]*Result, len(cases))
	errs := make([]error, len(cases))
	parallel.ForEach(len(cases), cfg.threshold, func(i int) {
		rng := rand.New(rand.NewPCG(cfg.seed, uint64(i)))
		results[i], errs[i] = cases[i].Run(rng)
	})

	for i, err := range errs {
		if err != nil {
			return nil, errors.Wrapf(err, "test case %d (%s)", i, cases[i].Family)
		}
	}

	cfg.logger.Debug("suite finished",
		log.SamplesKey, len(cases),
		log.RandomSeedKey, cfg.seed,
	)
	return results, nil
}

// String renders a one-line summary for display.
func (r *Result) String() string {
	s := fmt.Sprintf("%s n=%d", r.Case.Family, len(r.Sample))
	for _, name := range r.Case.Family.ParamNames() {
		s += fmt.Sprintf(" %s=%.4f (true %.4f, %.1f%%)", name, r.Estimation.Params[name], r.Case.TrueParams[name], r.Accuracy[name])
	}
	return s + fmt.Sprintf(" logL=%.3f", r.Estimation.LogLikelihood)
}
