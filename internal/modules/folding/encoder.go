package folding

import (
	"fmt"

	"github.com/aristath/foldvqe/internal/modules/pauli"
)

// Number of lattice directions a bond can take on the tetrahedral lattice.
const numDirections = 4

// secondNeighbourWeight scales the contact energy of the beads flanking a contact.
const secondNeighbourWeight = 0.1

// symmetryFixedQubits pins the first turn to direction 1, the second to direction 0 and halves
// the choices of the third; all other conformations are rotations or reflections of these.
var symmetryFixedQubits = map[int]int{0: 0, 1: 1, 2: 0, 3: 0, 5: 1}

// contactPair is a non-local bead pair that may sit at nearest-neighbour distance.
type contactPair struct {
	I, J  int // 1-based bead numbers, I < J
	Qubit int // index in the full register
}

// layout assigns qubits to the turns and contacts of a main chain of a given length.
type layout struct {
	beads      int
	confQubits int
	contacts   []contactPair
	width      int
}

func newLayout(beads int) (*layout, error) {
	l := &layout{beads: beads, confQubits: 2 * (beads - 1)}
	q := l.confQubits
	for i := 1; i <= beads; i++ {
		for j := i + 5; j <= beads; j += 2 {
			l.contacts = append(l.contacts, contactPair{I: i, J: j, Qubit: q})
			q++
		}
	}
	l.width = q
	if l.width > pauli.MaxQubits {
		return nil, fmt.Errorf("%d beads need %d qubits: %w", beads, l.width, ErrChainTooLong)
	}
	return l, nil
}

// turnQubits returns the (a, b) qubits encoding the bond from bead t to bead t+1.
func (l *layout) turnQubits(t int) (int, int) {
	return 2 * (t - 1), 2*(t-1) + 1
}

// fixedQubits returns the symmetry-fixed qubits that exist in this register.
func (l *layout) fixedQubits() map[int]int {
	fixed := make(map[int]int, len(symmetryFixedQubits))
	for q, v := range symmetryFixedQubits {
		if q < l.confQubits {
			fixed[q] = v
		}
	}
	return fixed
}

// encoder builds the terms of the folding Hamiltonian on the full register.
type encoder struct {
	layout     *layout
	energies   [][]float64
	penalties  PenaltyParameters
	indicators [][numDirections]*pauli.Operator
	distances  map[[2]int]*pauli.Operator
}

func newEncoder(l *layout, energies [][]float64, penalties PenaltyParameters) *encoder {
	e := &encoder{
		layout:     l,
		energies:   energies,
		penalties:  penalties,
		indicators: make([][numDirections]*pauli.Operator, l.beads),
		distances:  make(map[[2]int]*pauli.Operator),
	}
	n := l.width
	one := pauli.Identity(n)
	for t := 1; t < l.beads; t++ {
		qa, qb := l.turnQubits(t)
		a, b := pauli.Bit(n, qa), pauli.Bit(n, qb)
		e.indicators[t] = [numDirections]*pauli.Operator{
			one.Sub(a).Mul(one.Sub(b)),
			b.Mul(one.Sub(a)),
			a.Mul(one.Sub(b)),
			a.Mul(b),
		}
	}
	return e
}

// indicator is 1 when bond t points in direction k and 0 otherwise.
func (e *encoder) indicator(t, k int) *pauli.Operator {
	return e.indicators[t][k]
}

// distance returns the squared lattice distance between beads i < j, in units where bonded beads
// are at distance 1.
func (e *encoder) distance(i, j int) *pauli.Operator {
	key := [2]int{i, j}
	if d, ok := e.distances[key]; ok {
		return d
	}

	n := e.layout.width
	d := pauli.New(n)
	for k := 0; k < numDirections; k++ {
		delta := pauli.New(n)
		for t := i; t < j; t++ {
			if t%2 == 0 {
				delta = delta.Add(e.indicator(t, k))
			} else {
				delta = delta.Sub(e.indicator(t, k))
			}
		}
		d = d.Add(delta.Mul(delta))
	}
	d = d.Simplify(pauli.DefaultTolerance)
	e.distances[key] = d
	return d
}

// backPenalty penalises consecutive bonds that share a direction, which would fold the chain
// straight back onto the previous bead.
func (e *encoder) backPenalty() *pauli.Operator {
	h := pauli.New(e.layout.width)
	for t := 1; t < e.layout.beads-1; t++ {
		for k := 0; k < numDirections; k++ {
			h = h.Add(e.indicator(t, k).Mul(e.indicator(t+1, k)))
		}
	}
	return h.Scale(e.penalties.PenaltyBack)
}

// chiralPenalty is zero for a main chain without side-chain beads.
func (e *encoder) chiralPenalty() *pauli.Operator {
	return pauli.New(e.layout.width)
}

// firstNeighbour rewards a formed contact and forces its beads to nearest-neighbour distance.
func (e *encoder) firstNeighbour(i, j int) *pauli.Operator {
	n := e.layout.width
	lambda0 := 7 * float64(j-i+1) * e.penalties.Penalty1
	x := e.distance(i, j)
	return x.Sub(pauli.Identity(n)).Scale(lambda0).AddConstant(e.energies[i][j])
}

// secondNeighbour keeps the beads flanking a contact from collapsing onto it.
func (e *encoder) secondNeighbour(i, j int) *pauli.Operator {
	n := e.layout.width
	x := e.distance(i, j)
	return pauli.Constant(n, 2).Sub(x).Scale(e.penalties.Penalty1).
		AddConstant(secondNeighbourWeight * e.energies[i][j])
}

// contactEnergy sums the backbone-backbone contact terms, each switched on by its contact qubit.
func (e *encoder) contactEnergy() *pauli.Operator {
	n := e.layout.width
	h := pauli.New(n)
	for _, c := range e.layout.contacts {
		term := e.firstNeighbour(c.I, c.J)
		for _, nb := range [][2]int{{c.I - 1, c.J}, {c.I + 1, c.J}, {c.I, c.J - 1}, {c.I, c.J + 1}} {
			if nb[0] < 1 || nb[1] > e.layout.beads || nb[0] >= nb[1] {
				continue
			}
			term = term.Add(e.secondNeighbour(nb[0], nb[1]))
		}
		h = h.Add(pauli.Bit(n, c.Qubit).Mul(term))
	}
	return h
}

// hamiltonian returns the full-register operator before symmetry fixing.
func (e *encoder) hamiltonian() *pauli.Operator {
	return e.backPenalty().
		Add(e.chiralPenalty()).
		Add(e.contactEnergy()).
		Simplify(pauli.DefaultTolerance)
}
