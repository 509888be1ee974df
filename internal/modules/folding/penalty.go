package folding

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidPenalty is returned for negative or non-finite penalty weights.
var ErrInvalidPenalty = errors.New("invalid penalty")

// PenaltyParameters weights the constraints that keep lattice conformations physical.
type PenaltyParameters struct {
	PenaltyChiral float64 // chirality of side-chain beads
	PenaltyBack   float64 // consecutive bonds folding back onto each other
	Penalty1      float64 // overlap of beads around a contact
}

// NewPenaltyParameters builds and validates the three penalty weights.
func NewPenaltyParameters(chiral, back, penalty1 float64) (PenaltyParameters, error) {
	p := PenaltyParameters{PenaltyChiral: chiral, PenaltyBack: back, Penalty1: penalty1}
	return p, p.Validate()
}

// Validate checks that every weight is finite and non-negative.
func (p PenaltyParameters) Validate() error {
	weights := []struct {
		name  string
		value float64
	}{
		{"chiral", p.PenaltyChiral},
		{"back", p.PenaltyBack},
		{"penalty_1", p.Penalty1},
	}
	for _, w := range weights {
		if math.IsNaN(w.value) || math.IsInf(w.value, 0) || w.value < 0 {
			return fmt.Errorf("%s=%v: %w", w.name, w.value, ErrInvalidPenalty)
		}
	}
	return nil
}
