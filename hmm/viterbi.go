package hmm

import (
	"github.com/YuminosukeSato/pgmkit/pkg/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ViterbiResult is the most probable state sequence and the tables used to
// derive it.
type ViterbiResult struct {
	// Path holds one state index per observation.
	Path []int
	// Delta is T×N: the probability of the best path ending in state i at t.
	Delta *mat.Dense
	// Backpointers[t][j] is the predecessor of state j at t on its best
	// path. Row 0 is all zeros.
	Backpointers [][]int
	// Probability is max_i δ[T-1][i], the probability of Path jointly with
	// the observations.
	Probability float64
}

// Viterbi decodes the single most probable hidden-state sequence. Ties in
// either the recursion or the termination step go to the lowest state index.
func Viterbi(m *Model, obs []string) (*ViterbiResult, error) {
	const op = "hmm.Viterbi"

	o, err := m.encode(op, obs)
	if err != nil {
		return nil, err
	}
	n, steps := m.N(), len(o)

	delta := mat.NewDense(steps, n, nil)
	psi := make([][]int, steps)
	for t := range psi {
		psi[t] = make([]int, n)
	}

	for i := 0; i < n; i++ {
		delta.Set(0, i, m.initial.AtVec(i)*m.emission.At(i, o[0]))
	}

	for t := 1; t < steps; t++ {
		for j := 0; j < n; j++ {
			best, arg := -1.0, 0
			for i := 0; i < n; i++ {
				if v := delta.At(t-1, i) * m.transition.At(i, j); v > best {
					best, arg = v, i
				}
			}
			delta.Set(t, j, best*m.emission.At(j, o[t]))
			psi[t][j] = arg
		}
		warnOnUnderflow(op, "delta", delta, t)
	}

	last := mat.Row(nil, steps-1, delta)
	path := make([]int, steps)
	path[steps-1] = floats.MaxIdx(last)
	// Backtrack through ψ, not through argmax δ[t].
	for t := steps - 2; t >= 0; t-- {
		path[t] = psi[t+1][path[t+1]]
	}

	res := &ViterbiResult{
		Path:         path,
		Delta:        delta,
		Backpointers: psi,
		Probability:  last[path[steps-1]],
	}

	logger().Debug("viterbi decoding finished",
		log.OperationKey, log.OperationViterbi,
		log.StatesKey, n,
		log.StepsKey, steps,
		log.ProbabilityKey, res.Probability,
	)
	return res, nil
}
