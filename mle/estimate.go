package mle

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/pgmkit/metrics"
	"github.com/YuminosukeSato/pgmkit/pkg/errors"
	"github.com/YuminosukeSato/pgmkit/pkg/log"
)

// Estimation is the result of fitting a family to a sample.
type Estimation struct {
	Family Family
	Params Params
	// LogLikelihood is Σ log f(x_i | Params), accumulated term by term.
	LogLikelihood float64
	// Likelihood is exp(LogLikelihood). It underflows to 0 for all but
	// small samples; LogLikelihood stays meaningful.
	Likelihood float64
}

// Sample draws n variates of family f with the given generating parameters.
// A nil rng uses a randomly seeded source.
func Sample(f Family, trueParams Params, n int, rng *rand.Rand) ([]float64, error) {
	const op = "mle.Sample"

	d, err := lookup(op, f)
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, errors.NewInvalidConfigurationError(op, "n", "sample size must be >= 1", n)
	}
	if err := d.validate(op, trueParams); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	sample := make([]float64, n)
	for i := range sample {
		sample[i] = d.draw(trueParams, rng)
	}

	logger().Debug("sample drawn",
		log.OperationKey, log.OperationSample,
		log.FamilyKey, string(f),
		log.SamplesKey, n,
	)
	return sample, nil
}

// Estimate fits family f to sample by maximum likelihood:
//
//	normal:      mean = x̄, variance = (1/n)Σ(x-x̄)²
//	poisson:     lambda = x̄
//	binomial:    n = max(x), p = x̄/n
//	exponential: lambda = 1/x̄
//
// Estimates outside their parameter's domain (variance, lambda <= 0 or p
// outside (0,1)) and sample values outside the family's support are
// reported as DomainViolationError.
func Estimate(f Family, sample []float64) (*Estimation, error) {
	const op = "mle.Estimate"

	d, err := lookup(op, f)
	if err != nil {
		return nil, err
	}
	if len(sample) == 0 {
		return nil, errors.NewEmptyDataError(op, "sample")
	}
	if err := errors.CheckNumericalStability(op, sample); err != nil {
		return nil, err
	}
	for _, x := range sample {
		if !d.support(x) {
			return nil, errors.NewDomainViolationError(op, "sample", x, "support of "+string(f))
		}
	}

	params, err := d.fit(op, sample)
	if err != nil {
		return nil, err
	}

	logProb := d.logProb(params)
	var ll float64
	for _, x := range sample {
		ll += logProb(x)
	}
	likelihood := math.Exp(ll)
	if likelihood == 0 && !math.IsInf(ll, -1) {
		errors.Warn(errors.NewUnderflowWarning(op, "likelihood", len(sample)))
	}

	logger().Debug("parameters estimated",
		log.OperationKey, log.OperationEstimate,
		log.FamilyKey, string(f),
		log.SamplesKey, len(sample),
		log.LogLikelihoodKey, ll,
	)
	return &Estimation{
		Family:        f,
		Params:        params,
		LogLikelihood: ll,
		Likelihood:    likelihood,
	}, nil
}

// Prob evaluates the fitted density (continuous families) or mass (discrete
// families) at x.
func (e *Estimation) Prob(x float64) float64 {
	d, ok := families[e.Family]
	if !ok {
		return math.NaN()
	}
	return math.Exp(d.logProb(e.Params)(x))
}

// Accuracy scores each estimated parameter against its true value as
// 100 - relativeError*100, floored at 0. Parameters absent from either map
// are skipped.
func Accuracy(trueParams, estimated Params) map[string]float64 {
	out := make(map[string]float64, len(trueParams))
	for name, truth := range trueParams {
		est, ok := estimated[name]
		if !ok {
			continue
		}
		out[name] = metrics.ParameterAccuracy(truth, est)
	}
	return out
}

func logger() log.Logger {
	return log.GetLoggerWithName("mle")
}
