package mle

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/YuminosukeSato/pgmkit/pkg/errors"
	"github.com/YuminosukeSato/pgmkit/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestRoundTrip_Normal(t *testing.T) {
	sample, err := Sample(Normal, Params{ParamMean: 5, ParamVariance: 2}, 100_000, seeded(2024))
	require.NoError(t, err)
	require.Len(t, sample, 100_000)

	est, err := Estimate(Normal, sample)
	require.NoError(t, err)
	assert.InDelta(t, 5, est.Params[ParamMean], 0.05)
	assert.InDelta(t, 2, est.Params[ParamVariance], 0.1)
	assert.Zero(t, est.Likelihood, "product of 1e5 densities underflows")
	assert.False(t, math.IsInf(est.LogLikelihood, 0), "log-likelihood is summed, not logged from the product")
}

func TestRoundTrip_AllFamilies(t *testing.T) {
	tests := []struct {
		family Family
		params Params
		delta  map[string]float64
	}{
		{Poisson, Params{ParamLambda: 3}, map[string]float64{ParamLambda: 0.05}},
		{Binomial, Params{ParamN: 10, ParamP: 0.5}, map[string]float64{ParamN: 0, ParamP: 0.02}},
		{Exponential, Params{ParamLambda: 0.5}, map[string]float64{ParamLambda: 0.01}},
	}

	for _, tt := range tests {
		t.Run(string(tt.family), func(t *testing.T) {
			sample, err := Sample(tt.family, tt.params, 50_000, seeded(7))
			require.NoError(t, err)

			est, err := Estimate(tt.family, sample)
			require.NoError(t, err)
			for name, d := range tt.delta {
				assert.InDelta(t, tt.params[name], est.Params[name], d, name)
			}
		})
	}
}

func TestEstimate_ClosedForms(t *testing.T) {
	sample := []float64{1, 2, 3, 4}

	normal, err := Estimate(Normal, sample)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, normal.Params[ParamMean], 1e-12)
	assert.InDelta(t, 1.25, normal.Params[ParamVariance], 1e-12, "variance divides by n")

	poisson, err := Estimate(Poisson, sample)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, poisson.Params[ParamLambda], 1e-12)

	binomial, err := Estimate(Binomial, sample)
	require.NoError(t, err)
	assert.Equal(t, 4.0, binomial.Params[ParamN])
	assert.InDelta(t, 0.625, binomial.Params[ParamP], 1e-12)

	exponential, err := Estimate(Exponential, sample)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, exponential.Params[ParamLambda], 1e-12)
}

func TestEstimate_LogLikelihoodIsSumOfLogDensities(t *testing.T) {
	sample := []float64{0.5, 1.5, 2.0}

	est, err := Estimate(Exponential, sample)
	require.NoError(t, err)

	lambda := 3 / floats.Sum(sample)
	var want float64
	for _, x := range sample {
		want += math.Log(lambda) - lambda*x
	}
	assert.InDelta(t, want, est.LogLikelihood, 1e-12)
	assert.InDelta(t, math.Exp(want), est.Likelihood, 1e-12)
}

func TestEstimate_DomainViolations(t *testing.T) {
	tests := []struct {
		name   string
		family Family
		sample []float64
		param  string
	}{
		{"constant normal sample", Normal, []float64{3, 3, 3}, ParamVariance},
		{"all-zero poisson", Poisson, []float64{0, 0, 0}, ParamLambda},
		{"all-zero binomial", Binomial, []float64{0, 0}, ParamN},
		{"binomial p of one", Binomial, []float64{4, 4, 4}, ParamP},
		{"all-zero exponential", Exponential, []float64{0, 0}, ParamLambda},
		{"negative count", Poisson, []float64{1, -1}, "sample"},
		{"fractional count", Binomial, []float64{1, 2.5}, "sample"},
		{"negative waiting time", Exponential, []float64{1, -0.1}, "sample"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Estimate(tt.family, tt.sample)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrDomainViolation))

			var dv *errors.DomainViolationError
			require.True(t, errors.As(err, &dv))
			assert.Equal(t, tt.param, dv.ParamName)
		})
	}
}

func TestEstimate_InvalidInputs(t *testing.T) {
	_, err := Estimate(Normal, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfiguration))
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = Estimate(Family("gamma"), []float64{1})
	assert.True(t, errors.Is(err, errors.ErrInvalidConfiguration))

	_, err = Estimate(Normal, []float64{1, math.Inf(1)})
	var nie *errors.NumericalInstabilityError
	assert.True(t, errors.As(err, &nie))
}

func TestSample_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		family Family
		params Params
		n      int
	}{
		{"zero size", Normal, Params{ParamMean: 0, ParamVariance: 1}, 0},
		{"missing variance", Normal, Params{ParamMean: 0}, 10},
		{"negative variance", Normal, Params{ParamMean: 0, ParamVariance: -1}, 10},
		{"NaN mean", Normal, Params{ParamMean: math.NaN(), ParamVariance: 1}, 10},
		{"zero lambda", Poisson, Params{ParamLambda: 0}, 10},
		{"huge lambda", Poisson, Params{ParamLambda: 1000}, 10},
		{"fractional trials", Binomial, Params{ParamN: 2.5, ParamP: 0.5}, 10},
		{"p above one", Binomial, Params{ParamN: 5, ParamP: 1.5}, 10},
		{"negative rate", Exponential, Params{ParamLambda: -2}, 10},
		{"unknown family", Family("cauchy"), Params{}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sample(tt.family, tt.params, tt.n, seeded(1))
			assert.True(t, errors.Is(err, errors.ErrInvalidConfiguration), "got %v", err)
		})
	}
}

func TestSample_Support(t *testing.T) {
	rng := seeded(99)
	for _, f := range []Family{Poisson, Binomial} {
		params := Params{ParamLambda: 4}
		if f == Binomial {
			params = Params{ParamN: 6, ParamP: 0.4}
		}
		sample, err := Sample(f, params, 1000, rng)
		require.NoError(t, err)
		for _, x := range sample {
			assert.True(t, isCount(x), "%s draw %v is not a count", f, x)
		}
		if f == Binomial {
			assert.LessOrEqual(t, floats.Max(sample), 6.0)
		}
	}

	sample, err := Sample(Exponential, Params{ParamLambda: 2}, 1000, rng)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, floats.Min(sample), 0.0)
}

func TestSample_DeterministicWithSeed(t *testing.T) {
	a, err := Sample(Normal, Params{ParamMean: 0, ParamVariance: 1}, 20, seeded(5))
	require.NoError(t, err)
	b, err := Sample(Normal, Params{ParamMean: 0, ParamVariance: 1}, 20, seeded(5))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// Estimates from valid generated samples always land inside the domain.
func TestEstimate_DomainProperty(t *testing.T) {
	rng := seeded(11)
	for trial := 0; trial < 200; trial++ {
		n := 20 + rng.IntN(80)

		sample, err := Sample(Normal, Params{ParamMean: rng.NormFloat64(), ParamVariance: 0.1 + rng.Float64()*5}, n, rng)
		require.NoError(t, err)
		est, err := Estimate(Normal, sample)
		require.NoError(t, err)
		assert.Greater(t, est.Params[ParamVariance], 0.0)

		sample, err = Sample(Exponential, Params{ParamLambda: 0.1 + rng.Float64()*3}, n, rng)
		require.NoError(t, err)
		est, err = Estimate(Exponential, sample)
		require.NoError(t, err)
		assert.Greater(t, est.Params[ParamLambda], 0.0)

		sample, err = Sample(Binomial, Params{ParamN: 20, ParamP: 0.2 + rng.Float64()*0.6}, n, rng)
		require.NoError(t, err)
		est, err = Estimate(Binomial, sample)
		require.NoError(t, err)
		p := est.Params[ParamP]
		assert.True(t, p > 0 && p < 1, "p = %v", p)
	}
}

func TestAccuracy(t *testing.T) {
	acc := Accuracy(
		Params{ParamMean: 5, ParamVariance: 2},
		Params{ParamMean: 5.5, ParamVariance: 8},
	)
	assert.InDelta(t, 90, acc[ParamMean], 1e-9)
	assert.Equal(t, 0.0, acc[ParamVariance], "floored at zero")
}

func TestRunSuite(t *testing.T) {
	cases := append(DefaultTestCases(), DefaultTestCases()...)

	first, err := RunSuite(cases, WithSeed(42), WithParallelThreshold(2))
	require.NoError(t, err)
	require.Len(t, first, len(cases))

	again, err := RunSuite(cases, WithSeed(42), WithParallelThreshold(100))
	require.NoError(t, err)

	for i := range first {
		assert.Equal(t, cases[i].Family, first[i].Case.Family)
		assert.Equal(t, first[i].Sample, again[i].Sample, "case %d must not depend on scheduling", i)
		assert.Equal(t, first[i].Estimation.Params, again[i].Estimation.Params)
		for name := range cases[i].TrueParams {
			assert.Contains(t, first[i].Accuracy, name)
		}
	}
	assert.NotEqual(t, first[0].Sample, first[4].Sample, "each case draws from its own stream")
	assert.Contains(t, first[0].String(), "normal n=100")
}

func TestRunSuite_Errors(t *testing.T) {
	_, err := RunSuite(nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfiguration))
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = RunSuite([]TestCase{
		{Family: Normal, TrueParams: Params{ParamMean: 1, ParamVariance: 1}, SampleSize: 10},
		{Family: Poisson, TrueParams: Params{ParamLambda: 1}, SampleSize: 0},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfiguration))
	assert.Contains(t, err.Error(), "test case 1 (poisson)")
}

func TestParseFamily(t *testing.T) {
	for _, f := range Families() {
		got, err := ParseFamily(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFamily("weibull")
	assert.True(t, errors.Is(err, errors.ErrInvalidConfiguration))

	assert.Equal(t, []string{ParamN, ParamP}, Binomial.ParamNames())
	assert.Nil(t, Family("weibull").ParamNames())
}

func TestRunSuite_WithLogger(t *testing.T) {
	testLogger, _ := log.NewTestLogger(log.LevelDebug)
	_, err := RunSuite(DefaultTestCases(), WithSeed(3), WithLogger(testLogger))
	require.NoError(t, err)
	assert.True(t, testLogger.ContainsMessage("suite finished"))
	assert.True(t, testLogger.ContainsField(log.RandomSeedKey, 3.0))
}
