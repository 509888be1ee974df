package vqe

import (
	"fmt"
	"math"
	"sort"

	"github.com/aristath/foldvqe/internal/modules/circuit"
	"gonum.org/v1/gonum/stat"
)

// Expectation turns a measured distribution into the scalar the optimizer minimises.
type Expectation interface {
	// Evaluate returns the estimate and its standard deviation. energies is indexed by basis state.
	Evaluate(dist circuit.Distribution, energies []float64, shots int) (mean, std float64, err error)
	Name() string
}

// CVaRExpectation averages the lowest-energy Alpha fraction of the measured probability mass.
// Alpha = 1 is the ordinary expectation value.
type CVaRExpectation struct {
	Alpha float64
}

// NewCVaRExpectation validates alpha, which must lie in (0, 1].
func NewCVaRExpectation(alpha float64) (*CVaRExpectation, error) {
	if !(alpha > 0 && alpha <= 1) {
		return nil, fmt.Errorf("cvar alpha must be in (0, 1], got %v", alpha)
	}
	return &CVaRExpectation{Alpha: alpha}, nil
}

// Name implements Expectation.
func (c *CVaRExpectation) Name() string {
	return fmt.Sprintf("cvar(%g)", c.Alpha)
}

type outcome struct {
	state  uint64
	energy float64
	prob   float64
}

// Evaluate implements Expectation. The boundary outcome contributes only the part of its
// probability that fits in the alpha tail.
func (c *CVaRExpectation) Evaluate(dist circuit.Distribution, energies []float64, shots int) (float64, float64, error) {
	if len(dist) == 0 {
		return 0, 0, fmt.Errorf("empty distribution")
	}
	outcomes := make([]outcome, 0, len(dist))
	for state, p := range dist {
		if state >= uint64(len(energies)) {
			return 0, 0, fmt.Errorf("state %d outside the %d-state register", state, len(energies))
		}
		outcomes = append(outcomes, outcome{state: state, energy: energies[state], prob: p})
	}
	sort.Slice(outcomes, func(i, j int) bool {
		if outcomes[i].energy != outcomes[j].energy {
			return outcomes[i].energy < outcomes[j].energy
		}
		return outcomes[i].state < outcomes[j].state
	})

	var values, weights []float64
	var cum float64
	for _, o := range outcomes {
		take := math.Min(o.prob, c.Alpha-cum)
		if take <= 0 {
			break
		}
		values = append(values, o.energy)
		weights = append(weights, take)
		cum += take
	}

	mean, variance := stat.PopMeanVariance(values, weights)
	std := 0.0
	if shots > 0 {
		std = math.Sqrt(variance / float64(shots))
	}
	return mean, std, nil
}
