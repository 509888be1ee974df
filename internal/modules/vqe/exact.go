package vqe

import (
	"fmt"

	"github.com/aristath/foldvqe/internal/modules/pauli"
	"gonum.org/v1/gonum/floats"
)

// ExactMinimum enumerates the diagonal of op and returns its lowest eigenvalue and basis state.
// It is the classical reference the VQE estimate can be checked against.
func ExactMinimum(op *pauli.Operator) (uint64, float64, error) {
	diag, err := op.Diagonal()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to enumerate operator: %w", err)
	}
	i := floats.MinIdx(diag)
	return uint64(i), diag[i], nil
}
