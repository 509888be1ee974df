package circuit

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution maps a measured basis state to its observed (or exact) probability.
type Distribution map[uint64]float64

// Simulator measures circuits by sampling their statevector.
type Simulator struct {
	Shots int // 0 returns exact probabilities
	src   rand.Source
}

// NewSimulator returns a simulator whose measurement outcomes are reproducible from seed.
func NewSimulator(shots int, seed uint64) (*Simulator, error) {
	if shots < 0 {
		return nil, fmt.Errorf("shots must be non-negative, got %d", shots)
	}
	return &Simulator{
		Shots: shots,
		src:   rand.NewPCG(seed, seed^0xda3e39cb94b95bdb),
	}, nil
}

// Sample runs c with params and returns the measured distribution over basis states.
func (s *Simulator) Sample(c *Circuit, params []float64) (Distribution, error) {
	state, err := Run(c, params)
	if err != nil {
		return nil, fmt.Errorf("failed to simulate %s: %w", c.Name, err)
	}
	probs := state.Probabilities()

	dist := make(Distribution)
	if s.Shots == 0 {
		for i, p := range probs {
			if p > 1e-15 {
				dist[uint64(i)] = p
			}
		}
		return dist, nil
	}

	cat := distuv.NewCategorical(probs, s.src)
	weight := 1 / float64(s.Shots)
	for shot := 0; shot < s.Shots; shot++ {
		dist[uint64(cat.Rand())] += weight
	}
	return dist, nil
}
