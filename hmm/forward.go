package hmm

import (
	"github.com/YuminosukeSato/pgmkit/pkg/errors"
	"github.com/YuminosukeSato/pgmkit/pkg/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// underflowFloor is the row mass below which a subsequent all-zero row is
// treated as floating-point underflow rather than an impossible sequence.
const underflowFloor = 1e-280

// ForwardResult holds the α table and P(O|λ).
type ForwardResult struct {
	// Alpha is T×N: Alpha.At(t, i) = P(o_0..o_t, q_t = i | λ).
	Alpha *mat.Dense
	// Probability is Σ_i α[T-1][i], the likelihood of the whole sequence.
	Probability float64
}

// BackwardResult holds the β table.
type BackwardResult struct {
	// Beta is T×N: Beta.At(t, i) = P(o_{t+1}..o_{T-1} | q_t = i, λ).
	Beta *mat.Dense
}

// Forward runs the forward algorithm.
func Forward(m *Model, obs []string) (*ForwardResult, error) {
	const op = "hmm.Forward"

	o, err := m.encode(op, obs)
	if err != nil {
		return nil, err
	}
	alpha := forward(m, o)

	last := mat.Row(nil, len(o)-1, alpha)
	res := &ForwardResult{Alpha: alpha, Probability: floats.Sum(last)}

	logger().Debug("forward pass finished",
		log.OperationKey, log.OperationForward,
		log.StatesKey, m.N(),
		log.StepsKey, len(o),
		log.ProbabilityKey, res.Probability,
	)
	return res, nil
}

func forward(m *Model, o []int) *mat.Dense {
	n, steps := m.N(), len(o)
	alpha := mat.NewDense(steps, n, nil)

	for i := 0; i < n; i++ {
		alpha.Set(0, i, m.initial.AtVec(i)*m.emission.At(i, o[0]))
	}

	for t := 1; t < steps; t++ {
		for j := 0; j < n; j++ {
			var sum float64
			for i := 0; i < n; i++ {
				sum += alpha.At(t-1, i) * m.transition.At(i, j)
			}
			alpha.Set(t, j, sum*m.emission.At(j, o[t]))
		}
		warnOnUnderflow("hmm.Forward", "alpha", alpha, t)
	}
	return alpha
}

// Backward runs the backward algorithm.
func Backward(m *Model, obs []string) (*BackwardResult, error) {
	const op = "hmm.Backward"

	o, err := m.encode(op, obs)
	if err != nil {
		return nil, err
	}
	beta := backward(m, o)

	logger().Debug("backward pass finished",
		log.OperationKey, log.OperationBackward,
		log.StatesKey, m.N(),
		log.StepsKey, len(o),
	)
	return &BackwardResult{Beta: beta}, nil
}

func backward(m *Model, o []int) *mat.Dense {
	n, steps := m.N(), len(o)
	beta := mat.NewDense(steps, n, nil)

	for i := 0; i < n; i++ {
		beta.Set(steps-1, i, 1)
	}

	for t := steps - 2; t >= 0; t-- {
		for i := 0; i < n; i++ {
			var sum float64
			for j := 0; j < n; j++ {
				sum += m.transition.At(i, j) * m.emission.At(j, o[t+1]) * beta.At(t+1, j)
			}
			beta.Set(t, i, sum)
		}
	}
	return beta
}

// warnOnUnderflow raises an UnderflowWarning when row t of table is all
// zeros although row t-1 still carried (tiny) probability mass.
func warnOnUnderflow(op, quantity string, table *mat.Dense, t int) {
	_, n := table.Dims()
	var prev, cur float64
	for i := 0; i < n; i++ {
		prev += table.At(t-1, i)
		cur += table.At(t, i)
	}
	if cur == 0 && prev > 0 && prev < underflowFloor {
		errors.Warn(errors.NewUnderflowWarning(op, quantity, t))
	}
}
