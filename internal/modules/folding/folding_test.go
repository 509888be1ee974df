package folding

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func emptySideChains(n int) []string {
	return make([]string, n)
}

func newTestProblem(t *testing.T, seq string, inter Interaction, penalties PenaltyParameters) *ProteinFoldingProblem {
	t.Helper()
	peptide, err := NewPeptide(seq, emptySideChains(len(seq)))
	require.NoError(t, err)
	problem, err := NewProteinFoldingProblem(peptide, inter, penalties, zerolog.Nop())
	require.NoError(t, err)
	return problem
}

func defaultPenalties(t *testing.T) PenaltyParameters {
	t.Helper()
	p, err := NewPenaltyParameters(10, 10, 10)
	require.NoError(t, err)
	return p
}

func TestNewPeptide_Validation(t *testing.T) {
	testCases := []struct {
		name       string
		mainChain  string
		sideChains []string
		wantErr    error
	}{
		{"valid", "APRLRFY", emptySideChains(7), nil},
		{"lowercase rejected", "aprlrfy", emptySideChains(7), ErrInvalidResidue},
		{"surrounding space rejected", " APRLRFY", emptySideChains(8), ErrInvalidResidue},
		{"invalid residue", "APRLBFY", emptySideChains(7), ErrInvalidResidue},
		{"too short", "A", emptySideChains(1), ErrChainTooShort},
		{"side chain count", "APRLRFY", emptySideChains(6), ErrSideChainLength},
		{"side chain bead", "APRLRFY", []string{"", "", "A", "", "", "", ""}, ErrSideChainsUnsupported},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPeptide(tc.mainChain, tc.sideChains)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.mainChain, p.MainChain())
			assert.Len(t, p.SideChains(), len(tc.mainChain))
		})
	}
}

func TestPenaltyParameters_Validate(t *testing.T) {
	_, err := NewPenaltyParameters(10, 10, 10)
	assert.NoError(t, err)

	_, err = NewPenaltyParameters(10, -1, 10)
	assert.ErrorIs(t, err, ErrInvalidPenalty)
}

func TestMJEnergy_SymmetricLookup(t *testing.T) {
	cc, err := mjEnergy('C', 'C')
	require.NoError(t, err)
	assert.Equal(t, -5.44, cc)

	kc, err := mjEnergy('K', 'C')
	require.NoError(t, err)
	ck, err := mjEnergy('C', 'K')
	require.NoError(t, err)
	assert.Equal(t, ck, kc)
	assert.Equal(t, -1.95, kc)

	pp, err := mjEnergy('P', 'P')
	require.NoError(t, err)
	assert.Equal(t, -1.75, pp)

	_, err = mjEnergy('B', 'C')
	assert.ErrorIs(t, err, ErrInvalidResidue)
}

func TestMJTable_Complete(t *testing.T) {
	require.Len(t, mjUpper, len(mjOrder))
	for i, row := range mjUpper {
		assert.Len(t, row, len(mjOrder)-i, "row %c", mjOrder[i])
	}
	for _, r := range Alphabet {
		assert.Contains(t, mjOrder, string(r))
	}
}

func TestRandomInteraction_Reproducible(t *testing.T) {
	peptide, err := NewPeptide("APRLRFY", emptySideChains(7))
	require.NoError(t, err)

	a, err := NewRandomInteraction(23).PairEnergies(peptide)
	require.NoError(t, err)
	b, err := NewRandomInteraction(23).PairEnergies(peptide)
	require.NoError(t, err)
	c, err := NewRandomInteraction(24).PairEnergies(peptide)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	for i := 1; i <= 7; i++ {
		for j := i + 1; j <= 7; j++ {
			assert.GreaterOrEqual(t, a[i][j], -5.0)
			assert.Less(t, a[i][j], -1.0)
			assert.Equal(t, a[i][j], a[j][i])
		}
	}
}

func TestLayout_Contacts(t *testing.T) {
	l, err := newLayout(7)
	require.NoError(t, err)

	assert.Equal(t, 12, l.confQubits)
	require.Len(t, l.contacts, 2)
	assert.Equal(t, contactPair{I: 1, J: 6, Qubit: 12}, l.contacts[0])
	assert.Equal(t, contactPair{I: 2, J: 7, Qubit: 13}, l.contacts[1])
	assert.Equal(t, 14, l.width)
}

func TestLayout_TooLong(t *testing.T) {
	_, err := newLayout(40)
	assert.ErrorIs(t, err, ErrChainTooLong)
}

func TestQubitOp_APRLRFYHasNineQubits(t *testing.T) {
	problem := newTestProblem(t, "APRLRFY", NewMiyazawaJerniganInteraction(), defaultPenalties(t))

	op, err := problem.QubitOp()
	require.NoError(t, err)

	assert.Equal(t, 9, op.NumQubits())
	assert.Greater(t, op.Len(), 1)

	again, err := problem.QubitOp()
	require.NoError(t, err)
	assert.Same(t, op, again)
}

func TestQubitOp_DeterministicText(t *testing.T) {
	testCases := []struct {
		name  string
		inter func() Interaction
	}{
		{"miyazawa-jernigan", func() Interaction { return NewMiyazawaJerniganInteraction() }},
		{"random with fixed seed", func() Interaction { return NewRandomInteraction(23) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			first, err := newTestProblem(t, "APRLRFY", tc.inter(), defaultPenalties(t)).QubitOp()
			require.NoError(t, err)
			second, err := newTestProblem(t, "APRLRFY", tc.inter(), defaultPenalties(t)).QubitOp()
			require.NoError(t, err)

			assert.Equal(t, first.String(), second.String())
		})
	}
}

func TestQubitOp_PenaltiesChangeWeightsNotStructure(t *testing.T) {
	base, err := newTestProblem(t, "APRLRFY", NewMiyazawaJerniganInteraction(), defaultPenalties(t)).QubitOp()
	require.NoError(t, err)

	heavier, err := NewPenaltyParameters(25, 25, 25)
	require.NoError(t, err)
	changed, err := newTestProblem(t, "APRLRFY", NewMiyazawaJerniganInteraction(), heavier).QubitOp()
	require.NoError(t, err)

	assert.Equal(t, base.NumQubits(), changed.NumQubits())
	assert.Equal(t, base.Masks(), changed.Masks())
	assert.NotEqual(t, base.String(), changed.String())
}

func TestQubitOp_ShortChainHasNoFreeQubits(t *testing.T) {
	problem := newTestProblem(t, "APR", NewMiyazawaJerniganInteraction(), defaultPenalties(t))

	op, err := problem.QubitOp()
	require.NoError(t, err)
	assert.Equal(t, 0, op.NumQubits())
}

func TestBackPenalty_PenalisesRepeatedDirection(t *testing.T) {
	l, err := newLayout(3)
	require.NoError(t, err)
	penalties := PenaltyParameters{PenaltyBack: 10}
	e := newEncoder(l, newEnergyMatrix(3), penalties)
	h := e.backPenalty()

	// turn 1 = (q0, q1), turn 2 = (q2, q3); direction = 2a + b
	same := uint64(0b1010)  // both turns direction 1
	other := uint64(0b0010) // turn 1 direction 1, turn 2 direction 0
	assert.InDelta(t, 10.0, h.Evaluate(same), 1e-9)
	assert.InDelta(t, 0.0, h.Evaluate(other), 1e-9)
}

func TestDistance_NearestNeighbourIsOne(t *testing.T) {
	l, err := newLayout(3)
	require.NoError(t, err)
	e := newEncoder(l, newEnergyMatrix(3), PenaltyParameters{})

	d := e.distance(1, 2)
	for state := uint64(0); state < 16; state++ {
		assert.InDelta(t, 1.0, d.Evaluate(state), 1e-9, "state %04b", state)
	}
}

func TestInterpret_DecodesFixedTurns(t *testing.T) {
	problem := newTestProblem(t, "APRLRFY", NewMiyazawaJerniganInteraction(), defaultPenalties(t))
	op, err := problem.QubitOp()
	require.NoError(t, err)

	for _, bits := range []uint64{0, 0b101010101, uint64(1)<<uint(op.NumQubits()) - 1} {
		conf, err := problem.Interpret(bits)
		require.NoError(t, err)

		require.Len(t, conf.Turns, 6)
		require.Len(t, conf.Positions, 7)
		assert.Equal(t, 1, conf.Turns[0])
		assert.Equal(t, 0, conf.Turns[1])
		assert.Contains(t, []int{1, 3}, conf.Turns[2])
		assert.Len(t, conf.Contacts, 2)
		assert.InDelta(t, op.Evaluate(bits), conf.Energy, 1e-12)

		for i := 1; i < len(conf.Positions); i++ {
			bond := r3.Norm(r3.Sub(conf.Positions[i], conf.Positions[i-1]))
			assert.InDelta(t, 1.0, bond, 1e-9)
		}
	}
}

func TestInterpret_RejectsWideBitstring(t *testing.T) {
	problem := newTestProblem(t, "APRLRFY", NewMiyazawaJerniganInteraction(), defaultPenalties(t))
	_, err := problem.Interpret(uint64(1) << 20)
	assert.Error(t, err)
}

func TestConformation_WriteXYZ(t *testing.T) {
	problem := newTestProblem(t, "APRLRFY", NewMiyazawaJerniganInteraction(), defaultPenalties(t))
	conf, err := problem.Interpret(0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, conf.WriteXYZ(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "7", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "APRLRFY"))
	assert.Equal(t, "A 0.000000 0.000000 0.000000", lines[2])
	assert.True(t, strings.HasPrefix(lines[8], "Y "))
}
