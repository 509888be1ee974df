package circuit

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealAmplitudes_Structure(t *testing.T) {
	testCases := []struct {
		ent     Entanglement
		wantCX  int
		firstCX []int
	}{
		{EntanglementLinear, 3, []int{0, 1}},
		{EntanglementReverseLinear, 3, []int{2, 3}},
		{EntanglementFull, 6, []int{0, 1}},
		{EntanglementCircular, 4, []int{3, 0}},
	}

	for _, tc := range testCases {
		t.Run(string(tc.ent), func(t *testing.T) {
			c, err := RealAmplitudes(4, 1, tc.ent)
			require.NoError(t, err)

			assert.Equal(t, 8, c.NumParameters)
			var cx []Gate
			for _, g := range c.Gates {
				if g.Name == "CX" {
					cx = append(cx, g)
				}
			}
			require.Len(t, cx, tc.wantCX)
			assert.Equal(t, tc.firstCX, cx[0].Qubits)
		})
	}
}

func TestRealAmplitudes_Invalid(t *testing.T) {
	_, err := RealAmplitudes(0, 1, EntanglementLinear)
	assert.Error(t, err)

	_, err = RealAmplitudes(2, 1, "ring")
	assert.Error(t, err)
}

func TestParseEntanglement(t *testing.T) {
	e, err := ParseEntanglement("")
	require.NoError(t, err)
	assert.Equal(t, EntanglementReverseLinear, e)

	_, err = ParseEntanglement("star")
	assert.Error(t, err)
}

func TestParameterNames(t *testing.T) {
	c, err := RealAmplitudes(2, 1, EntanglementLinear)
	require.NoError(t, err)
	assert.Equal(t, []string{"θ[0]", "θ[1]", "θ[2]", "θ[3]"}, c.ParameterNames())
}

func TestStatevector_RYPiFlipsQubit(t *testing.T) {
	s, err := NewStatevector(2)
	require.NoError(t, err)

	s.ApplyRY(1, math.Pi)
	probs := s.Probabilities()
	assert.InDelta(t, 1.0, probs[0b10], 1e-12)

	s.ApplyCX(1, 0)
	probs = s.Probabilities()
	assert.InDelta(t, 1.0, probs[0b11], 1e-12)
}

func TestRun_NormIsPreserved(t *testing.T) {
	c, err := RealAmplitudes(3, 2, EntanglementFull)
	require.NoError(t, err)
	params := make([]float64, c.NumParameters)
	for i := range params {
		params[i] = 0.3 * float64(i+1)
	}

	s, err := Run(c, params)
	require.NoError(t, err)
	total := 0.0
	for _, p := range s.Probabilities() {
		total += p
	}
	assert.InDelta(t, 1.0, total, 1e-12)

	_, err = Run(c, params[:2])
	assert.Error(t, err)
}

func TestCheckMemory(t *testing.T) {
	orig := availableMemory
	defer func() { availableMemory = orig }()

	availableMemory = func() (uint64, error) { return 1 << 20, nil }
	assert.NoError(t, checkMemory(10))
	assert.ErrorIs(t, checkMemory(20), ErrInsufficientMemory)
	assert.ErrorIs(t, checkMemory(MaxQubits+1), ErrInsufficientMemory)

	availableMemory = func() (uint64, error) { return 0, errors.New("no stats") }
	assert.NoError(t, checkMemory(20))
}

func TestSimulator_ExactProbabilities(t *testing.T) {
	c, err := RealAmplitudes(1, 0, EntanglementLinear)
	require.NoError(t, err)
	sim, err := NewSimulator(0, 1)
	require.NoError(t, err)

	dist, err := sim.Sample(c, []float64{math.Pi / 2})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, dist[0], 1e-12)
	assert.InDelta(t, 0.5, dist[1], 1e-12)
}

func TestSimulator_SampledIsSeededAndNormalised(t *testing.T) {
	c, err := RealAmplitudes(3, 1, EntanglementReverseLinear)
	require.NoError(t, err)
	params := []float64{0.1, 0.7, 1.3, -0.4, 2.2, 0.9}

	sample := func() Distribution {
		sim, err := NewSimulator(8192, 23)
		require.NoError(t, err)
		d, err := sim.Sample(c, params)
		require.NoError(t, err)
		return d
	}

	a, b := sample(), sample()
	assert.Equal(t, a, b)

	total := 0.0
	for _, p := range a {
		total += p
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestNewSimulator_NegativeShots(t *testing.T) {
	_, err := NewSimulator(-1, 0)
	assert.Error(t, err)
}
