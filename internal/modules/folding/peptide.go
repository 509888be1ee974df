// Package folding encodes the lattice protein-folding problem of a peptide as a qubit operator.
//
// The model follows the coarse-grained tetrahedral-lattice formulation: every bond between two
// consecutive main-chain beads is one of four lattice directions, encoded on two qubits. Contact
// qubits mark non-local bead pairs that sit at nearest-neighbour distance, and penalty terms keep
// the chain from folding back on itself or overlapping.
package folding

import (
	"errors"
	"fmt"
	"strings"
)

// Alphabet is the set of residue letters the interaction models understand.
const Alphabet = "ACDEFGHIKLMNPQRSTVWY"

var (
	// ErrInvalidResidue is returned for letters outside Alphabet.
	ErrInvalidResidue = errors.New("invalid residue")
	// ErrChainTooShort is returned for main chains with fewer than two residues.
	ErrChainTooShort = errors.New("main chain too short")
	// ErrChainTooLong is returned when the encoding would not fit a 64-qubit register.
	ErrChainTooLong = errors.New("main chain too long")
	// ErrSideChainLength is returned when the side chain list does not match the main chain.
	ErrSideChainLength = errors.New("side chain count does not match main chain length")
	// ErrSideChainsUnsupported is returned for non-empty side chains.
	ErrSideChainsUnsupported = errors.New("side chain beads are not supported")
)

// Peptide is an immutable main chain plus its per-residue side chains.
type Peptide struct {
	mainChain  string
	sideChains []string
}

// NewPeptide validates and builds a peptide. Residues are upper-case one-letter codes; any
// other rune, including lower case and whitespace, is rejected.
func NewPeptide(mainChain string, sideChains []string) (*Peptide, error) {
	if len(mainChain) < 2 {
		return nil, fmt.Errorf("%q has %d residues: %w", mainChain, len(mainChain), ErrChainTooShort)
	}
	for i, r := range mainChain {
		if !strings.ContainsRune(Alphabet, r) {
			return nil, fmt.Errorf("residue %q at position %d: %w", r, i+1, ErrInvalidResidue)
		}
	}
	if len(sideChains) != len(mainChain) {
		return nil, fmt.Errorf("%d side chains for %d residues: %w", len(sideChains), len(mainChain), ErrSideChainLength)
	}
	for i, sc := range sideChains {
		if sc != "" {
			return nil, fmt.Errorf("side chain %q on bead %d: %w", sc, i+1, ErrSideChainsUnsupported)
		}
	}

	return &Peptide{
		mainChain:  mainChain,
		sideChains: append([]string(nil), sideChains...),
	}, nil
}

// MainChain returns the main-chain residue string.
func (p *Peptide) MainChain() string {
	return p.mainChain
}

// SideChains returns a copy of the side-chain list.
func (p *Peptide) SideChains() []string {
	return append([]string(nil), p.sideChains...)
}

// Len returns the number of main-chain beads.
func (p *Peptide) Len() int {
	return len(p.mainChain)
}

// Residue returns the residue letter of the 1-based bead i.
func (p *Peptide) Residue(i int) byte {
	return p.mainChain[i-1]
}

func (p *Peptide) String() string {
	return p.mainChain
}
