package folding

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// latticeDirections are the four bond vectors of the tetrahedral lattice, with unit length.
// Bonds leaving odd-numbered beads use the negated vectors.
var latticeDirections = [numDirections]r3.Vec{
	{X: -1 / math.Sqrt(3), Y: 1 / math.Sqrt(3), Z: 1 / math.Sqrt(3)},
	{X: 1 / math.Sqrt(3), Y: 1 / math.Sqrt(3), Z: -1 / math.Sqrt(3)},
	{X: -1 / math.Sqrt(3), Y: -1 / math.Sqrt(3), Z: -1 / math.Sqrt(3)},
	{X: 1 / math.Sqrt(3), Y: -1 / math.Sqrt(3), Z: 1 / math.Sqrt(3)},
}

// Contact reports whether the contact qubit of a bead pair is set.
type Contact struct {
	I, J   int
	Formed bool
}

// Conformation is a decoded lattice fold of the main chain.
type Conformation struct {
	Sequence  string
	Bits      uint64 // compacted-register bitstring
	Energy    float64
	Turns     []int // direction of each of the N-1 bonds
	Positions []r3.Vec
	Contacts  []Contact
}

// Interpret decodes a bitstring of the compacted register into a conformation.
func (p *ProteinFoldingProblem) Interpret(bits uint64) (*Conformation, error) {
	op, err := p.QubitOp()
	if err != nil {
		return nil, err
	}
	if op.NumQubits() < 64 && bits>>uint(op.NumQubits()) != 0 {
		return nil, fmt.Errorf("bitstring %b wider than the %d-qubit register", bits, op.NumQubits())
	}

	full := p.expand(bits)
	bit := func(q int) int { return int(full>>uint(q)) & 1 }

	n := p.peptide.Len()
	c := &Conformation{
		Sequence:  p.peptide.MainChain(),
		Bits:      bits,
		Energy:    op.Evaluate(bits),
		Turns:     make([]int, 0, n-1),
		Positions: make([]r3.Vec, 1, n),
	}
	for t := 1; t < n; t++ {
		qa, qb := p.layout.turnQubits(t)
		dir := 2*bit(qa) + bit(qb)
		c.Turns = append(c.Turns, dir)

		step := latticeDirections[dir]
		if t%2 == 0 {
			step = r3.Scale(-1, step)
		}
		c.Positions = append(c.Positions, r3.Add(c.Positions[t-1], step))
	}
	for _, pair := range p.layout.contacts {
		c.Contacts = append(c.Contacts, Contact{I: pair.I, J: pair.J, Formed: bit(pair.Qubit) == 1})
	}
	return c, nil
}

// SelfAvoiding reports whether no two beads occupy the same lattice site.
func (c *Conformation) SelfAvoiding() bool {
	for i := range c.Positions {
		for j := i + 1; j < len(c.Positions); j++ {
			if r3.Norm(r3.Sub(c.Positions[i], c.Positions[j])) < 1e-6 {
				return false
			}
		}
	}
	return true
}

// WriteXYZ writes the main-chain coordinates in XYZ format, one residue per line.
func (c *Conformation) WriteXYZ(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", len(c.Positions))
	fmt.Fprintf(bw, "%s turns=%v energy=%.6f\n", c.Sequence, c.Turns, c.Energy)
	for i, pos := range c.Positions {
		fmt.Fprintf(bw, "%c %.6f %.6f %.6f\n", c.Sequence[i], pos.X, pos.Y, pos.Z)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write xyz: %w", err)
	}
	return nil
}
