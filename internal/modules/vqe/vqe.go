// Package vqe minimises the expectation of a diagonal qubit operator over a parameterised
// ansatz, driving the circuit simulator with a gonum optimizer.
package vqe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/aristath/foldvqe/internal/modules/circuit"
	"github.com/aristath/foldvqe/internal/modules/pauli"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrNoQubits is returned for operators that act on no qubit, which leave nothing to optimise.
var ErrNoQubits = errors.New("operator acts on no qubits")

// Callback receives every objective evaluation, in order: the 1-based evaluation count, the
// parameters, the estimate and its standard deviation.
type Callback func(evalCount int, parameters []float64, mean, std float64)

// AnsatzBuilder returns the ansatz for an operator of the given width.
type AnsatzBuilder func(numQubits int) (*circuit.Circuit, error)

// RealAmplitudesBuilder builds a RealAmplitudes ansatz sized to the operator.
func RealAmplitudesBuilder(reps int, entanglement circuit.Entanglement) AnsatzBuilder {
	return func(numQubits int) (*circuit.Circuit, error) {
		return circuit.RealAmplitudes(numQubits, reps, entanglement)
	}
}

// Options configures a VQE run.
type Options struct {
	Ansatz       AnsatzBuilder
	Optimizer    *Optimizer
	Simulator    *circuit.Simulator
	Expectation  Expectation
	Callback     Callback
	InitialPoint []float64 // drawn uniformly from [-π, π] when nil
	Seed         uint64
}

// VQE is a variational quantum eigensolver over diagonal operators.
type VQE struct {
	opts Options
	log  zerolog.Logger
}

// New validates opts and returns a solver.
func New(opts Options, log zerolog.Logger) (*VQE, error) {
	if opts.Ansatz == nil {
		return nil, fmt.Errorf("ansatz is required")
	}
	if opts.Optimizer == nil {
		return nil, fmt.Errorf("optimizer is required")
	}
	if opts.Simulator == nil {
		return nil, fmt.Errorf("simulator is required")
	}
	if opts.Expectation == nil {
		return nil, fmt.Errorf("expectation is required")
	}
	return &VQE{opts: opts, log: log.With().Str("component", "vqe").Logger()}, nil
}

// Measurement is one sampled basis state with its energy.
type Measurement struct {
	Bitstring   string
	State       uint64
	Value       float64
	Probability float64
}

// Result is the outcome of ComputeMinimumEigenvalue.
type Result struct {
	NumQubits         int
	OptimalValue      float64
	OptimalPoint      []float64
	OptimalParameters map[string]float64
	CostFunctionEvals int
	OptimizerTime     time.Duration
	Eigenstate        map[string]float64 // bitstring -> sqrt(probability) at the optimal point
	BestMeasurement   Measurement
	Status            string
}

// ComputeMinimumEigenvalue runs the optimisation loop until the evaluation budget is spent or the
// optimizer converges. The callback runs synchronously inside this call.
func (v *VQE) ComputeMinimumEigenvalue(ctx context.Context, op *pauli.Operator) (*Result, error) {
	n := op.NumQubits()
	if n == 0 {
		return nil, ErrNoQubits
	}
	energies, err := op.Diagonal()
	if err != nil {
		return nil, err
	}
	ansatz, err := v.opts.Ansatz(n)
	if err != nil {
		return nil, fmt.Errorf("failed to build ansatz: %w", err)
	}

	initial := v.opts.InitialPoint
	if initial == nil {
		initial = v.initialPoint(ansatz.NumParameters)
	}
	if len(initial) != ansatz.NumParameters {
		return nil, fmt.Errorf("initial point has %d values, ansatz takes %d", len(initial), ansatz.NumParameters)
	}

	var (
		evalCount int
		evalErr   error
		bestValue = math.Inf(1)
		bestPoint []float64
	)
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if evalErr != nil {
				return math.Inf(1)
			}
			if err := ctx.Err(); err != nil {
				evalErr = err
				return math.Inf(1)
			}
			dist, err := v.opts.Simulator.Sample(ansatz, x)
			if err != nil {
				evalErr = err
				return math.Inf(1)
			}
			mean, std, err := v.opts.Expectation.Evaluate(dist, energies, v.opts.Simulator.Shots)
			if err != nil {
				evalErr = err
				return math.Inf(1)
			}
			evalCount++
			if bestPoint == nil || mean < bestValue {
				bestValue = mean
				bestPoint = append(bestPoint[:0], x...)
			}
			if v.opts.Callback != nil {
				v.opts.Callback(evalCount, append([]float64(nil), x...), mean, std)
			}
			return mean
		},
		Status: func() (optimize.Status, error) {
			if evalErr != nil {
				return optimize.Failure, evalErr
			}
			return optimize.NotTerminated, nil
		},
	}

	v.log.Info().
		Int("qubits", n).
		Int("parameters", ansatz.NumParameters).
		Str("optimizer", string(v.opts.Optimizer.Method)).
		Int("max_evaluations", v.opts.Optimizer.MaxIter).
		Str("expectation", v.opts.Expectation.Name()).
		Msg("Starting VQE")

	start := time.Now()
	res, err := optimize.Minimize(problem, initial, v.opts.Optimizer.settings(), v.opts.Optimizer.method(v.opts.Seed))
	elapsed := time.Since(start)
	if evalErr != nil {
		return nil, fmt.Errorf("objective evaluation failed: %w", evalErr)
	}
	if err != nil && res == nil {
		return nil, fmt.Errorf("optimization failed: %w", err)
	}
	if err != nil {
		v.log.Warn().Err(err).Str("status", res.Status.String()).Msg("Optimizer stopped early")
	}
	if bestPoint == nil {
		return nil, fmt.Errorf("optimizer finished without evaluating the objective")
	}

	// gonum only moves res.X on major iterations; the optimum is the lowest evaluation seen.
	result := &Result{
		NumQubits:         n,
		OptimalValue:      bestValue,
		OptimalPoint:      bestPoint,
		OptimalParameters: make(map[string]float64, len(bestPoint)),
		CostFunctionEvals: evalCount,
		OptimizerTime:     elapsed,
		Status:            res.Status.String(),
	}
	for i, name := range ansatz.ParameterNames() {
		result.OptimalParameters[name] = bestPoint[i]
	}
	if err := v.measureOptimum(ansatz, energies, result); err != nil {
		return nil, err
	}

	v.log.Info().
		Float64("optimal_value", result.OptimalValue).
		Int("evaluations", result.CostFunctionEvals).
		Dur("elapsed", elapsed).
		Str("best_measurement", result.BestMeasurement.Bitstring).
		Msg("VQE finished")
	return result, nil
}

func (v *VQE) initialPoint(size int) []float64 {
	u := distuv.Uniform{Min: -math.Pi, Max: math.Pi, Src: rand.NewPCG(v.opts.Seed, v.opts.Seed^0xbb67ae8584caa73b)}
	x := make([]float64, size)
	for i := range x {
		x[i] = u.Rand()
	}
	return x
}

// measureOptimum samples the ansatz at the optimal point to fill the eigenstate and best
// measurement. This final sample is not reported to the callback.
func (v *VQE) measureOptimum(ansatz *circuit.Circuit, energies []float64, result *Result) error {
	dist, err := v.opts.Simulator.Sample(ansatz, result.OptimalPoint)
	if err != nil {
		return fmt.Errorf("failed to sample optimal point: %w", err)
	}

	states := make([]uint64, 0, len(dist))
	for s := range dist {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool {
		ei, ej := energies[states[i]], energies[states[j]]
		if ei != ej {
			return ei < ej
		}
		if dist[states[i]] != dist[states[j]] {
			return dist[states[i]] > dist[states[j]]
		}
		return states[i] < states[j]
	})

	result.Eigenstate = make(map[string]float64, len(dist))
	for _, s := range states {
		result.Eigenstate[Bitstring(s, result.NumQubits)] = math.Sqrt(dist[s])
	}
	best := states[0]
	result.BestMeasurement = Measurement{
		Bitstring:   Bitstring(best, result.NumQubits),
		State:       best,
		Value:       energies[best],
		Probability: dist[best],
	}
	return nil
}

// Bitstring formats a basis state with qubit 0 rightmost.
func Bitstring(state uint64, numQubits int) string {
	return fmt.Sprintf("%0*b", numQubits, state)
}
