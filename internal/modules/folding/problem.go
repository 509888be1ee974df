package folding

import (
	"fmt"

	"github.com/aristath/foldvqe/internal/modules/pauli"
	"github.com/rs/zerolog"
)

// ProteinFoldingProblem ties a peptide, an interaction model and penalty weights together and
// produces the qubit operator whose ground state is the lowest-energy lattice conformation.
type ProteinFoldingProblem struct {
	peptide     *Peptide
	interaction Interaction
	penalties   PenaltyParameters
	log         zerolog.Logger

	layout *layout
	op     *pauli.Operator
	kept   []int
}

// NewProteinFoldingProblem validates its inputs and returns a problem ready to encode.
func NewProteinFoldingProblem(
	peptide *Peptide,
	interaction Interaction,
	penalties PenaltyParameters,
	log zerolog.Logger,
) (*ProteinFoldingProblem, error) {
	if peptide == nil {
		return nil, fmt.Errorf("peptide is required")
	}
	if interaction == nil {
		return nil, fmt.Errorf("interaction is required")
	}
	if err := penalties.Validate(); err != nil {
		return nil, err
	}
	l, err := newLayout(peptide.Len())
	if err != nil {
		return nil, err
	}

	return &ProteinFoldingProblem{
		peptide:     peptide,
		interaction: interaction,
		penalties:   penalties,
		log:         log.With().Str("component", "folding").Logger(),
		layout:      l,
	}, nil
}

// Peptide returns the peptide being folded.
func (p *ProteinFoldingProblem) Peptide() *Peptide {
	return p.peptide
}

// QubitOp returns the encoded operator on the compacted register. The encoding is computed once
// and reused by later calls and by Interpret.
func (p *ProteinFoldingProblem) QubitOp() (*pauli.Operator, error) {
	if p.op != nil {
		return p.op, nil
	}

	energies, err := p.interaction.PairEnergies(p.peptide)
	if err != nil {
		return nil, fmt.Errorf("failed to compute %s pair energies: %w", p.interaction.Name(), err)
	}

	h := newEncoder(p.layout, energies, p.penalties).hamiltonian()
	fixed, err := h.Fix(p.layout.fixedQubits())
	if err != nil {
		return nil, fmt.Errorf("failed to fix symmetry qubits: %w", err)
	}
	op, kept := fixed.Simplify(pauli.DefaultTolerance).Compact()

	p.log.Debug().
		Str("sequence", p.peptide.MainChain()).
		Str("interaction", p.interaction.Name()).
		Int("register_qubits", p.layout.width).
		Int("contacts", len(p.layout.contacts)).
		Int("qubits", op.NumQubits()).
		Int("terms", op.Len()).
		Msg("Encoded folding problem")

	p.op, p.kept = op, kept
	return op, nil
}

// expand maps a bitstring on the compacted register back to the full register, restoring the
// symmetry-fixed qubits.
func (p *ProteinFoldingProblem) expand(bits uint64) uint64 {
	var full uint64
	for ni, q := range p.kept {
		if bits&(uint64(1)<<uint(ni)) != 0 {
			full |= uint64(1) << uint(q)
		}
	}
	for q, v := range p.layout.fixedQubits() {
		if v == 1 {
			full |= uint64(1) << uint(q)
		}
	}
	return full
}
