// Package pauli implements the diagonal qubit operators produced by the folding encoder.
//
// An Operator is a real-weighted sum of Z-strings. A Z-string is stored as a bit mask where
// bit i set means Z acts on qubit i; the empty mask is the identity. Since Z² = I, the product
// of two Z-strings is the XOR of their masks, so the whole algebra closes over masks and the
// operator stays diagonal in the computational basis.
package pauli

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"sort"
	"strings"
)

// MaxQubits is the widest register a mask can address.
const MaxQubits = 64

// MaxDiagonalQubits bounds Diagonal, which materialises 2^n energies.
const MaxDiagonalQubits = 26

// DefaultTolerance is the magnitude below which coefficients are treated as zero.
const DefaultTolerance = 1e-12

// ErrTooManyQubits is returned when an operation would exceed a register limit.
var ErrTooManyQubits = errors.New("too many qubits")

// Term is a single weighted Z-string.
type Term struct {
	Mask        uint64
	Coefficient float64
}

// Operator is an immutable weighted sum of Z-strings on NumQubits qubits.
type Operator struct {
	numQubits int
	terms     map[uint64]float64
}

// New returns the zero operator on n qubits.
func New(n int) *Operator {
	if n < 0 || n > MaxQubits {
		panic(fmt.Sprintf("pauli: register width %d out of range [0, %d]", n, MaxQubits))
	}
	return &Operator{numQubits: n, terms: make(map[uint64]float64)}
}

// Identity returns the identity on n qubits.
func Identity(n int) *Operator {
	op := New(n)
	op.terms[0] = 1
	return op
}

// Constant returns c·I on n qubits.
func Constant(n int, c float64) *Operator {
	return Identity(n).Scale(c)
}

// Z returns the single-qubit Z on qubit i of an n-qubit register.
func Z(n, i int) *Operator {
	op := New(n)
	op.checkQubit(i)
	op.terms[uint64(1)<<uint(i)] = 1
	return op
}

// Bit returns the projector (I - Z_i)/2, whose eigenvalue is the classical value of qubit i.
func Bit(n, i int) *Operator {
	op := New(n)
	op.checkQubit(i)
	op.terms[0] = 0.5
	op.terms[uint64(1)<<uint(i)] = -0.5
	return op
}

// FromTerms builds an operator from explicit terms, summing repeated masks.
func FromTerms(n int, terms []Term) (*Operator, error) {
	op := New(n)
	for _, t := range terms {
		if n < MaxQubits && t.Mask>>uint(n) != 0 {
			return nil, fmt.Errorf("term mask %b exceeds %d qubits: %w", t.Mask, n, ErrTooManyQubits)
		}
		op.terms[t.Mask] += t.Coefficient
	}
	return op, nil
}

func (o *Operator) checkQubit(i int) {
	if i < 0 || i >= o.numQubits {
		panic(fmt.Sprintf("pauli: qubit %d out of range for %d-qubit register", i, o.numQubits))
	}
}

// NumQubits returns the register width.
func (o *Operator) NumQubits() int {
	return o.numQubits
}

// Len returns the number of stored terms.
func (o *Operator) Len() int {
	return len(o.terms)
}

// Coefficient returns the weight of the given Z-string, zero if absent.
func (o *Operator) Coefficient(mask uint64) float64 {
	return o.terms[mask]
}

func (o *Operator) clone(width int) *Operator {
	out := New(width)
	for m, c := range o.terms {
		out.terms[m] = c
	}
	return out
}

// Add returns o + other. The result is as wide as the wider operand.
func (o *Operator) Add(other *Operator) *Operator {
	out := o.clone(max(o.numQubits, other.numQubits))
	for m, c := range other.terms {
		out.terms[m] += c
	}
	return out
}

// Sub returns o - other.
func (o *Operator) Sub(other *Operator) *Operator {
	return o.Add(other.Scale(-1))
}

// Mul returns the operator product o·other.
func (o *Operator) Mul(other *Operator) *Operator {
	out := New(max(o.numQubits, other.numQubits))
	for m1, c1 := range o.terms {
		for m2, c2 := range other.terms {
			out.terms[m1^m2] += c1 * c2
		}
	}
	return out
}

// Scale returns c·o.
func (o *Operator) Scale(c float64) *Operator {
	out := New(o.numQubits)
	for m, v := range o.terms {
		out.terms[m] = c * v
	}
	return out
}

// AddConstant returns o + c·I.
func (o *Operator) AddConstant(c float64) *Operator {
	out := o.clone(o.numQubits)
	out.terms[0] += c
	return out
}

// Simplify drops every term whose magnitude is at most tol.
func (o *Operator) Simplify(tol float64) *Operator {
	out := New(o.numQubits)
	for m, c := range o.terms {
		if math.Abs(c) > tol {
			out.terms[m] = c
		}
	}
	return out
}

// Fix substitutes classical values for the given qubits. A qubit fixed to 0 turns its Z into +1,
// a qubit fixed to 1 turns it into -1. The register width is unchanged; use Compact to drop the
// freed qubits.
func (o *Operator) Fix(values map[int]int) (*Operator, error) {
	var fixedMask, oneMask uint64
	for q, v := range values {
		if q < 0 || q >= o.numQubits {
			return nil, fmt.Errorf("cannot fix qubit %d of a %d-qubit operator", q, o.numQubits)
		}
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("qubit %d fixed to %d, want 0 or 1", q, v)
		}
		fixedMask |= uint64(1) << uint(q)
		if v == 1 {
			oneMask |= uint64(1) << uint(q)
		}
	}

	out := New(o.numQubits)
	for m, c := range o.terms {
		if bits.OnesCount64(m&oneMask)%2 == 1 {
			c = -c
		}
		out.terms[m&^fixedMask] += c
	}
	return out, nil
}

// Support returns the mask of qubits acted on by at least one term.
func (o *Operator) Support() uint64 {
	var used uint64
	for m := range o.terms {
		used |= m
	}
	return used
}

// Compact removes every qubit no term acts on. kept[newIndex] is the original index of each
// remaining qubit, in ascending order.
func (o *Operator) Compact() (*Operator, []int) {
	used := o.Support()
	kept := make([]int, 0, bits.OnesCount64(used))
	for q := 0; q < o.numQubits; q++ {
		if used&(uint64(1)<<uint(q)) != 0 {
			kept = append(kept, q)
		}
	}

	out := New(len(kept))
	for m, c := range o.terms {
		var nm uint64
		for ni, q := range kept {
			if m&(uint64(1)<<uint(q)) != 0 {
				nm |= uint64(1) << uint(ni)
			}
		}
		out.terms[nm] += c
	}
	return out, kept
}

// Evaluate returns the energy of the computational basis state whose qubit i holds bit i of state.
func (o *Operator) Evaluate(state uint64) float64 {
	var e float64
	for m, c := range o.terms {
		if bits.OnesCount64(m&state)%2 == 1 {
			e -= c
		} else {
			e += c
		}
	}
	return e
}

// Diagonal returns the energy of every basis state, indexed by the state bits.
func (o *Operator) Diagonal() ([]float64, error) {
	if o.numQubits > MaxDiagonalQubits {
		return nil, fmt.Errorf("diagonal of %d qubits: %w", o.numQubits, ErrTooManyQubits)
	}
	size := 1 << uint(o.numQubits)
	diag := make([]float64, size)
	for _, t := range o.Terms() {
		for s := 0; s < size; s++ {
			if bits.OnesCount64(t.Mask&uint64(s))%2 == 1 {
				diag[s] -= t.Coefficient
			} else {
				diag[s] += t.Coefficient
			}
		}
	}
	return diag, nil
}

// Terms returns the terms ordered by weight (number of Z factors) and then by mask.
func (o *Operator) Terms() []Term {
	terms := make([]Term, 0, len(o.terms))
	for m, c := range o.terms {
		terms = append(terms, Term{Mask: m, Coefficient: c})
	}
	sort.Slice(terms, func(i, j int) bool {
		wi, wj := bits.OnesCount64(terms[i].Mask), bits.OnesCount64(terms[j].Mask)
		if wi != wj {
			return wi < wj
		}
		return terms[i].Mask < terms[j].Mask
	})
	return terms
}

// Masks returns the set of Z-strings with a non-negligible coefficient.
func (o *Operator) Masks() map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(o.terms))
	for m, c := range o.terms {
		if math.Abs(c) > DefaultTolerance {
			set[m] = struct{}{}
		}
	}
	return set
}

// Label renders a mask as a Pauli string with qubit 0 rightmost.
func Label(mask uint64, n int) string {
	var b strings.Builder
	b.Grow(n)
	for q := n - 1; q >= 0; q-- {
		if mask&(uint64(1)<<uint(q)) != 0 {
			b.WriteByte('Z')
		} else {
			b.WriteByte('I')
		}
	}
	return b.String()
}

// String prints one "coefficient * PAULISTRING" term per line, in Terms order.
func (o *Operator) String() string {
	var b strings.Builder
	for i, t := range o.Terms() {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%+.10f * %s", t.Coefficient, Label(t.Mask, o.numQubits))
	}
	return b.String()
}
