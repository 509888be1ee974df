package circuit

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/shirou/gopsutil/v3/mem"
)

// MaxQubits bounds the statevector size independently of the memory check.
const MaxQubits = 30

// ErrInsufficientMemory is returned when a statevector would not fit in available memory.
var ErrInsufficientMemory = errors.New("insufficient memory for statevector")

// availableMemory reports the bytes the host can still allocate.
var availableMemory = func() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Available, nil
}

// checkMemory refuses statevectors that would take more than half the available memory.
// Hosts where memory stats are unavailable are not checked.
func checkMemory(numQubits int) error {
	if numQubits > MaxQubits {
		return fmt.Errorf("%d qubits exceeds the simulator limit of %d: %w", numQubits, MaxQubits, ErrInsufficientMemory)
	}
	need := uint64(16) << uint(numQubits)
	avail, err := availableMemory()
	if err != nil {
		return nil
	}
	if need > avail/2 {
		return fmt.Errorf("%d qubits need %d bytes, %d available: %w", numQubits, need, avail, ErrInsufficientMemory)
	}
	return nil
}

// Statevector holds the 2^n amplitudes of an n-qubit register. Basis index bit i is qubit i.
type Statevector struct {
	NumQubits  int
	Amplitudes []complex128
}

// NewStatevector returns |0...0⟩ on numQubits qubits.
func NewStatevector(numQubits int) (*Statevector, error) {
	if err := checkMemory(numQubits); err != nil {
		return nil, err
	}
	amps := make([]complex128, 1<<uint(numQubits))
	amps[0] = 1
	return &Statevector{NumQubits: numQubits, Amplitudes: amps}, nil
}

// ApplyRY rotates qubit q about the Y axis by theta.
func (s *Statevector) ApplyRY(q int, theta float64) {
	c := complex(math.Cos(theta/2), 0)
	sn := complex(math.Sin(theta/2), 0)
	bit := 1 << uint(q)
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = c*a0 - sn*a1
			s.Amplitudes[j] = sn*a0 + c*a1
		}
	}
}

// ApplyCX flips target on the basis states where control is set.
func (s *Statevector) ApplyCX(control, target int) {
	cBit := 1 << uint(control)
	tBit := 1 << uint(target)
	for i := range s.Amplitudes {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// Probabilities returns |amplitude|² for every basis state.
func (s *Statevector) Probabilities() []float64 {
	probs := make([]float64, len(s.Amplitudes))
	for i, a := range s.Amplitudes {
		probs[i] = real(a * cmplx.Conj(a))
	}
	return probs
}

// Run prepares the statevector of c with the given parameter values.
func Run(c *Circuit, params []float64) (*Statevector, error) {
	if len(params) != c.NumParameters {
		return nil, fmt.Errorf("circuit %s takes %d parameters, got %d", c.Name, c.NumParameters, len(params))
	}
	state, err := NewStatevector(c.NumQubits)
	if err != nil {
		return nil, err
	}
	for _, g := range c.Gates {
		switch g.Name {
		case "RY":
			state.ApplyRY(g.Qubits[0], params[g.Param])
		case "CX":
			state.ApplyCX(g.Qubits[0], g.Qubits[1])
		default:
			return nil, fmt.Errorf("unsupported gate %q", g.Name)
		}
	}
	return state, nil
}
