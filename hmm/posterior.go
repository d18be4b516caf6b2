package hmm

import (
	"fmt"

	"github.com/YuminosukeSato/pgmkit/pkg/errors"
	"github.com/YuminosukeSato/pgmkit/pkg/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// PosteriorResult holds the smoothed state marginals.
type PosteriorResult struct {
	// Gamma is T×N: Gamma.At(t, i) = P(q_t = i | O, λ). Rows sum to 1.
	Gamma *mat.Dense
	// Probability is P(O|λ), shared by every time step.
	Probability float64
}

// Posterior combines the forward and backward tables into
// γ[t][i] = α[t][i]·β[t][i] / P(O|λ). It fails with a DomainViolationError
// when P(O|λ) is zero, either because the sequence is impossible under the
// model or because the linear-space tables underflowed.
func Posterior(m *Model, obs []string) (*PosteriorResult, error) {
	const op = "hmm.Posterior"

	o, err := m.encode(op, obs)
	if err != nil {
		return nil, err
	}
	alpha := forward(m, o)
	beta := backward(m, o)

	steps, n := alpha.Dims()
	prob := floats.Sum(mat.Row(nil, steps-1, alpha))
	if prob <= 0 {
		return nil, errors.NewDomainViolationError(op, "P(O|λ)", prob, "(0, 1]")
	}

	gamma := mat.NewDense(steps, n, nil)
	gamma.MulElem(alpha, beta)
	gamma.Scale(1/prob, gamma)

	logger().Debug("posterior computed",
		log.OperationKey, log.OperationPosterior,
		log.StepsKey, steps,
		log.ProbabilityKey, prob,
	)
	return &PosteriorResult{Gamma: gamma, Probability: prob}, nil
}

// PathProbability returns P(path, O | λ) = π[q0]·B[q0][o0]·Π A[q_{t-1}][q_t]·B[q_t][o_t].
func PathProbability(m *Model, obs []string, path []int) (float64, error) {
	const op = "hmm.PathProbability"

	o, err := m.encode(op, obs)
	if err != nil {
		return 0, err
	}
	if len(path) != len(o) {
		return 0, errors.NewInvalidConfigurationError(op, "path", fmt.Sprintf("length must equal %d observations", len(o)), len(path))
	}
	for t, q := range path {
		if q < 0 || q >= m.N() {
			return 0, errors.NewInvalidConfigurationError(op, fmt.Sprintf("path[%d]", t), "state index out of range", q)
		}
	}

	p := m.initial.AtVec(path[0]) * m.emission.At(path[0], o[0])
	for t := 1; t < len(o); t++ {
		p *= m.transition.At(path[t-1], path[t]) * m.emission.At(path[t], o[t])
	}
	return p, nil
}
