// Package circuit builds parameterised ansatz circuits and simulates them on a statevector.
package circuit

import (
	"fmt"
)

// Entanglement selects the CX pattern between rotation layers.
type Entanglement string

const (
	EntanglementLinear        Entanglement = "linear"
	EntanglementReverseLinear Entanglement = "reverse_linear"
	EntanglementFull          Entanglement = "full"
	EntanglementCircular      Entanglement = "circular"
)

// ParseEntanglement validates an entanglement name; the empty string selects reverse_linear.
func ParseEntanglement(name string) (Entanglement, error) {
	switch e := Entanglement(name); e {
	case "":
		return EntanglementReverseLinear, nil
	case EntanglementLinear, EntanglementReverseLinear, EntanglementFull, EntanglementCircular:
		return e, nil
	default:
		return "", fmt.Errorf("unknown entanglement %q", name)
	}
}

// Gate is one operation of a circuit. Param indexes the circuit parameter vector for rotations
// and is -1 for fixed gates.
type Gate struct {
	Name   string
	Qubits []int
	Param  int
}

// Circuit is a gate list over NumQubits qubits with NumParameters free angles.
type Circuit struct {
	Name          string
	NumQubits     int
	NumParameters int
	Gates         []Gate
}

// ParameterNames returns the display names of the parameters, θ[0] to θ[n-1].
func (c *Circuit) ParameterNames() []string {
	names := make([]string, c.NumParameters)
	for i := range names {
		names[i] = fmt.Sprintf("θ[%d]", i)
	}
	return names
}

// RealAmplitudes returns the hardware-efficient ansatz of alternating RY layers and CX
// entanglers. The prepared states always have real amplitudes.
func RealAmplitudes(numQubits, reps int, entanglement Entanglement) (*Circuit, error) {
	if numQubits < 1 {
		return nil, fmt.Errorf("ansatz needs at least one qubit, got %d", numQubits)
	}
	if reps < 0 {
		return nil, fmt.Errorf("reps must be non-negative, got %d", reps)
	}
	pairs, err := entanglerPairs(numQubits, entanglement)
	if err != nil {
		return nil, err
	}

	c := &Circuit{Name: "RealAmplitudes", NumQubits: numQubits}
	rotationLayer := func() {
		for q := 0; q < numQubits; q++ {
			c.Gates = append(c.Gates, Gate{Name: "RY", Qubits: []int{q}, Param: c.NumParameters})
			c.NumParameters++
		}
	}

	rotationLayer()
	for r := 0; r < reps; r++ {
		for _, p := range pairs {
			c.Gates = append(c.Gates, Gate{Name: "CX", Qubits: []int{p[0], p[1]}, Param: -1})
		}
		rotationLayer()
	}
	return c, nil
}

// entanglerPairs lists the (control, target) pairs of one entangling block.
func entanglerPairs(n int, e Entanglement) ([][2]int, error) {
	var pairs [][2]int
	switch e {
	case EntanglementLinear:
		for i := 0; i < n-1; i++ {
			pairs = append(pairs, [2]int{i, i + 1})
		}
	case EntanglementReverseLinear:
		for i := n - 2; i >= 0; i-- {
			pairs = append(pairs, [2]int{i, i + 1})
		}
	case EntanglementFull:
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	case EntanglementCircular:
		if n > 2 {
			pairs = append(pairs, [2]int{n - 1, 0})
		}
		for i := 0; i < n-1; i++ {
			pairs = append(pairs, [2]int{i, i + 1})
		}
	default:
		return nil, fmt.Errorf("unknown entanglement %q", e)
	}
	return pairs, nil
}
