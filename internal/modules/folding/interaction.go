package folding

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Interaction supplies the contact energy of every pair of main-chain beads.
type Interaction interface {
	// PairEnergies returns an (N+1)×(N+1) matrix indexed by 1-based bead number.
	PairEnergies(p *Peptide) ([][]float64, error)
	Name() string
}

func newEnergyMatrix(n int) [][]float64 {
	m := make([][]float64, n+1)
	for i := range m {
		m[i] = make([]float64, n+1)
	}
	return m
}

// MiyazawaJerniganInteraction looks contact energies up in the Miyazawa-Jernigan table.
type MiyazawaJerniganInteraction struct{}

// NewMiyazawaJerniganInteraction returns the MJ interaction model.
func NewMiyazawaJerniganInteraction() MiyazawaJerniganInteraction {
	return MiyazawaJerniganInteraction{}
}

// Name implements Interaction.
func (MiyazawaJerniganInteraction) Name() string { return "miyazawa-jernigan" }

// PairEnergies implements Interaction.
func (MiyazawaJerniganInteraction) PairEnergies(p *Peptide) ([][]float64, error) {
	n := p.Len()
	energies := newEnergyMatrix(n)
	for i := 1; i <= n; i++ {
		for j := i + 1; j <= n; j++ {
			e, err := mjEnergy(p.Residue(i), p.Residue(j))
			if err != nil {
				return nil, fmt.Errorf("failed to look up beads %d and %d: %w", i, j, err)
			}
			energies[i][j] = e
			energies[j][i] = e
		}
	}
	return energies, nil
}

// RandomInteraction draws every pair energy uniformly from [-5, -1).
type RandomInteraction struct {
	Seed uint64
}

// NewRandomInteraction returns a random interaction model reproducible from seed.
func NewRandomInteraction(seed uint64) RandomInteraction {
	return RandomInteraction{Seed: seed}
}

// Name implements Interaction.
func (RandomInteraction) Name() string { return "random" }

// PairEnergies implements Interaction.
func (r RandomInteraction) PairEnergies(p *Peptide) ([][]float64, error) {
	n := p.Len()
	dist := distuv.Uniform{Min: -5, Max: -1, Src: rand.NewPCG(r.Seed, r.Seed^0x9e3779b97f4a7c15)}
	energies := newEnergyMatrix(n)
	for i := 1; i <= n; i++ {
		for j := i + 1; j <= n; j++ {
			e := dist.Rand()
			energies[i][j] = e
			energies[j][i] = e
		}
	}
	return energies, nil
}
