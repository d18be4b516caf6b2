// Package hmm implements inference over discrete Hidden Markov Models:
// the forward and backward recursions, Viterbi decoding and state
// posteriors.
//
// All computations run in linear probability space. For observation
// sequences longer than a few dozen steps the tables underflow towards zero;
// a warning is raised through errors.Warn when that happens, but callers must
// not rely on the numbers for long sequences.
//
// Every operation is a pure function of a *Model and an observation
// sequence. Tables are freshly allocated per call and the model is never
// mutated, so concurrent calls need no locking.
package hmm

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/pgmkit/pkg/errors"
	"github.com/YuminosukeSato/pgmkit/pkg/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// rowSumTolerance is how far a probability row may drift from 1.
const rowSumTolerance = 1e-9

// Model is an immutable discrete HMM λ = (π, A, B).
type Model struct {
	states      []string
	symbols     []string
	symbolIndex map[string]int

	initial    *mat.VecDense // π, length N
	transition *mat.Dense    // A, N×N
	emission   *mat.Dense    // B, N×M
}

// NewModel validates and builds a Model. initial must have one entry per
// state, transition must be N×N and emission N×M, and every one of those
// rows must be a probability distribution (non-negative, summing to 1
// within 1e-9). Any violation is reported as an InvalidModelError.
func NewModel(states, symbols []string, initial []float64, transition, emission [][]float64) (*Model, error) {
	const op = "hmm.NewModel"

	n, m := len(states), len(symbols)
	if n == 0 {
		return nil, errors.NewInvalidModelError(op, "states", "at least one state is required")
	}
	if m == 0 {
		return nil, errors.NewInvalidModelError(op, "symbols", "at least one observation symbol is required")
	}
	if err := checkUnique(op, "states", states); err != nil {
		return nil, err
	}
	if err := checkUnique(op, "symbols", symbols); err != nil {
		return nil, err
	}

	if len(initial) != n {
		return nil, errors.NewInvalidModelError(op, "initial", fmt.Sprintf("expected %d entries, got %d", n, len(initial)))
	}
	if err := checkDistribution(op, "initial", initial); err != nil {
		return nil, err
	}

	if len(transition) != n {
		return nil, errors.NewInvalidModelError(op, "transition", fmt.Sprintf("expected %d rows, got %d", n, len(transition)))
	}
	if len(emission) != n {
		return nil, errors.NewInvalidModelError(op, "emission", fmt.Sprintf("expected %d rows, got %d", n, len(emission)))
	}

	a := mat.NewDense(n, n, nil)
	b := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		field := fmt.Sprintf("transition[%d]", i)
		if len(transition[i]) != n {
			return nil, errors.NewInvalidModelError(op, field, fmt.Sprintf("expected %d columns, got %d", n, len(transition[i])))
		}
		if err := checkDistribution(op, field, transition[i]); err != nil {
			return nil, err
		}
		a.SetRow(i, transition[i])

		field = fmt.Sprintf("emission[%d]", i)
		if len(emission[i]) != m {
			return nil, errors.NewInvalidModelError(op, field, fmt.Sprintf("expected %d columns, got %d", m, len(emission[i])))
		}
		if err := checkDistribution(op, field, emission[i]); err != nil {
			return nil, err
		}
		b.SetRow(i, emission[i])
	}

	index := make(map[string]int, m)
	for k, s := range symbols {
		index[s] = k
	}

	return &Model{
		states:      append([]string(nil), states...),
		symbols:     append([]string(nil), symbols...),
		symbolIndex: index,
		initial:     mat.NewVecDense(n, append([]float64(nil), initial...)),
		transition:  a,
		emission:    b,
	}, nil
}

// MustNewModel is like NewModel but panics on an invalid definition. It is
// meant for package-level literals such as the built-in scenarios.
func MustNewModel(states, symbols []string, initial []float64, transition, emission [][]float64) *Model {
	m, err := NewModel(states, symbols, initial, transition, emission)
	if err != nil {
		panic(err)
	}
	return m
}

func checkUnique(op, field string, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			return errors.NewInvalidModelError(op, field, fmt.Sprintf("duplicate name %q", name))
		}
		seen[name] = struct{}{}
	}
	return nil
}

func checkDistribution(op, field string, row []float64) error {
	for j, p := range row {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return errors.NewInvalidModelError(op, field, fmt.Sprintf("entry %d = %v is not a probability", j, p))
		}
	}
	if sum := floats.Sum(row); math.Abs(sum-1) > rowSumTolerance {
		return errors.NewInvalidModelError(op, field, fmt.Sprintf("row sums to %v, want 1", sum))
	}
	return nil
}

// N is the number of hidden states.
func (m *Model) N() int { return len(m.states) }

// M is the number of observation symbols.
func (m *Model) M() int { return len(m.symbols) }

// States returns a copy of the state names in index order.
func (m *Model) States() []string { return append([]string(nil), m.states...) }

// Symbols returns a copy of the observation symbols in index order.
func (m *Model) Symbols() []string { return append([]string(nil), m.symbols...) }

// Initial returns π[i].
func (m *Model) Initial(i int) float64 { return m.initial.AtVec(i) }

// Transition returns A[i][j].
func (m *Model) Transition(i, j int) float64 { return m.transition.At(i, j) }

// Emission returns B[i][k].
func (m *Model) Emission(i, k int) float64 { return m.emission.At(i, k) }

// SymbolIndex returns the column of B for symbol.
func (m *Model) SymbolIndex(symbol string) (int, bool) {
	k, ok := m.symbolIndex[symbol]
	return k, ok
}

// StateNames maps a path of state indices to state names. An index outside
// [0, N) is an InvalidConfigurationError.
func (m *Model) StateNames(path []int) ([]string, error) {
	names := make([]string, len(path))
	for t, i := range path {
		if i < 0 || i >= len(m.states) {
			return nil, errors.NewInvalidConfigurationError("hmm.StateNames", fmt.Sprintf("path[%d]", t), "state index out of range", i)
		}
		names[t] = m.states[i]
	}
	return names, nil
}

// encode validates obs against the vocabulary and returns symbol indices.
func (m *Model) encode(op string, obs []string) ([]int, error) {
	if m == nil {
		return nil, errors.NewInvalidModelError(op, "model", "nil model")
	}
	if len(obs) == 0 {
		return nil, errors.NewEmptyDataError(op, "observations")
	}
	idx := make([]int, len(obs))
	for t, o := range obs {
		k, ok := m.symbolIndex[o]
		if !ok {
			return nil, errors.NewInvalidObservationError(op, o, t)
		}
		idx[t] = k
	}
	return idx, nil
}

func logger() log.Logger {
	return log.GetLoggerWithName("hmm")
}
