// Package mle estimates distribution parameters by maximum likelihood and
// generates synthetic samples to check the estimates against known truth.
//
// Four families are supported: normal, poisson, binomial and exponential.
// Estimates are closed-form. The binomial trial count n is taken as the
// largest observed value, which is a heuristic rather than a joint MLE of
// (n, p).
package mle

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/pgmkit/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Family tags a distribution family.
type Family string

const (
	Normal      Family = "normal"
	Poisson     Family = "poisson"
	Binomial    Family = "binomial"
	Exponential Family = "exponential"
)

// Parameter names used as keys of Params.
const (
	ParamMean     = "mean"
	ParamVariance = "variance"
	ParamLambda   = "lambda"
	ParamN        = "n"
	ParamP        = "p"
)

// maxPoissonLambda bounds λ for Knuth's sampler, whose e^{-λ} threshold
// underflows past roughly 745.
const maxPoissonLambda = 700

// Params maps parameter names to values.
type Params map[string]float64

// Families lists the supported families in display order.
func Families() []Family {
	return []Family{Normal, Poisson, Binomial, Exponential}
}

// ParseFamily validates a family tag.
func ParseFamily(s string) (Family, error) {
	f := Family(s)
	if _, ok := families[f]; !ok {
		return "", errors.NewInvalidConfigurationError("mle.ParseFamily", "family", "unknown distribution family", s)
	}
	return f, nil
}

// ParamNames returns the parameter keys of the family in display order.
func (f Family) ParamNames() []string {
	if d, ok := families[f]; ok {
		return append([]string(nil), d.params...)
	}
	return nil
}

// Discrete reports whether the family is supported on the integers.
func (f Family) Discrete() bool {
	return f == Poisson || f == Binomial
}

// family holds the per-family behaviour.
type family struct {
	params []string
	// validate checks generating parameters for Sample.
	validate func(op string, p Params) error
	// draw produces one variate.
	draw func(p Params, rng *rand.Rand) float64
	// support reports whether x can be observed at all.
	support func(x float64) bool
	// fit computes the closed-form estimate.
	fit func(op string, sample []float64) (Params, error)
	// logProb returns the log density or mass at the estimate.
	logProb func(p Params) func(x float64) float64
}

var families = map[Family]family{
	Normal: {
		params: []string{ParamMean, ParamVariance},
		validate: func(op string, p Params) error {
			if err := requireFinite(op, p, ParamMean); err != nil {
				return err
			}
			return requirePositive(op, p, ParamVariance)
		},
		draw: func(p Params, rng *rand.Rand) float64 {
			// Box–Muller; 1-U keeps the logarithm finite.
			u1 := 1 - rng.Float64()
			u2 := rng.Float64()
			z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
			return p[ParamMean] + math.Sqrt(p[ParamVariance])*z
		},
		support: func(float64) bool { return true },
		fit: func(op string, sample []float64) (Params, error) {
			mean := stat.Mean(sample, nil)
			variance := stat.PopVariance(sample, nil)
			if !(variance > 0) {
				return nil, errors.NewDomainViolationError(op, ParamVariance, variance, "(0, +Inf)")
			}
			return Params{ParamMean: mean, ParamVariance: variance}, nil
		},
		logProb: func(p Params) func(float64) float64 {
			return distuv.Normal{Mu: p[ParamMean], Sigma: math.Sqrt(p[ParamVariance])}.LogProb
		},
	},
	Poisson: {
		params: []string{ParamLambda},
		validate: func(op string, p Params) error {
			if err := requirePositive(op, p, ParamLambda); err != nil {
				return err
			}
			if p[ParamLambda] > maxPoissonLambda {
				return errors.NewInvalidConfigurationError(op, ParamLambda, "too large for the multiplicative sampler", p[ParamLambda])
			}
			return nil
		},
		draw: func(p Params, rng *rand.Rand) float64 {
			// Knuth: count uniforms until their running product drops
			// below e^{-λ}.
			limit := math.Exp(-p[ParamLambda])
			k := 0
			prod := rng.Float64()
			for prod > limit {
				k++
				prod *= rng.Float64()
			}
			return float64(k)
		},
		support: isCount,
		fit: func(op string, sample []float64) (Params, error) {
			lambda := stat.Mean(sample, nil)
			if !(lambda > 0) {
				return nil, errors.NewDomainViolationError(op, ParamLambda, lambda, "(0, +Inf)")
			}
			return Params{ParamLambda: lambda}, nil
		},
		logProb: func(p Params) func(float64) float64 {
			return distuv.Poisson{Lambda: p[ParamLambda]}.LogProb
		},
	},
	Binomial: {
		params: []string{ParamN, ParamP},
		validate: func(op string, p Params) error {
			n, ok := p[ParamN]
			if !ok {
				return errors.NewInvalidConfigurationError(op, ParamN, "parameter is required", nil)
			}
			if !(n >= 1) || n != math.Trunc(n) || math.IsInf(n, 0) {
				return errors.NewInvalidConfigurationError(op, ParamN, "must be a positive integer", n)
			}
			prob, ok := p[ParamP]
			if !ok {
				return errors.NewInvalidConfigurationError(op, ParamP, "parameter is required", nil)
			}
			if !(prob >= 0 && prob <= 1) {
				return errors.NewInvalidConfigurationError(op, ParamP, "must be within [0, 1]", prob)
			}
			return nil
		},
		draw: func(p Params, rng *rand.Rand) float64 {
			trials := int(p[ParamN])
			successes := 0
			for i := 0; i < trials; i++ {
				if rng.Float64() < p[ParamP] {
					successes++
				}
			}
			return float64(successes)
		},
		support: isCount,
		fit: func(op string, sample []float64) (Params, error) {
			n := floats.Max(sample)
			if n < 1 {
				return nil, errors.NewDomainViolationError(op, ParamN, n, "[1, +Inf)")
			}
			prob := stat.Mean(sample, nil) / n
			if !(prob > 0 && prob < 1) {
				return nil, errors.NewDomainViolationError(op, ParamP, prob, "(0, 1)")
			}
			return Params{ParamN: n, ParamP: prob}, nil
		},
		logProb: func(p Params) func(float64) float64 {
			return distuv.Binomial{N: p[ParamN], P: p[ParamP]}.LogProb
		},
	},
	Exponential: {
		params: []string{ParamLambda},
		validate: func(op string, p Params) error {
			return requirePositive(op, p, ParamLambda)
		},
		draw: func(p Params, rng *rand.Rand) float64 {
			return -math.Log(1-rng.Float64()) / p[ParamLambda]
		},
		support: func(x float64) bool { return x >= 0 },
		fit: func(op string, sample []float64) (Params, error) {
			mean := stat.Mean(sample, nil)
			if !(mean > 0) {
				return nil, errors.NewDomainViolationError(op, ParamLambda, math.Inf(1), "(0, +Inf)")
			}
			return Params{ParamLambda: 1 / mean}, nil
		},
		logProb: func(p Params) func(float64) float64 {
			return distuv.Exponential{Rate: p[ParamLambda]}.LogProb
		},
	},
}

func lookup(op string, f Family) (family, error) {
	d, ok := families[f]
	if !ok {
		return family{}, errors.NewInvalidConfigurationError(op, "family", "unknown distribution family", string(f))
	}
	return d, nil
}

func isCount(x float64) bool {
	return x >= 0 && x == math.Trunc(x)
}

func requireFinite(op string, p Params, name string) error {
	v, ok := p[name]
	if !ok {
		return errors.NewInvalidConfigurationError(op, name, "parameter is required", nil)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.NewInvalidConfigurationError(op, name, "must be finite", v)
	}
	return nil
}

func requirePositive(op string, p Params, name string) error {
	if err := requireFinite(op, p, name); err != nil {
		return err
	}
	if p[name] <= 0 {
		return errors.NewInvalidConfigurationError(op, name, "must be positive", p[name])
	}
	return nil
}
