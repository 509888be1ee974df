package charts

import (
	"bytes"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/aristath/foldvqe/internal/modules/telemetry"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

func trace(n int) *telemetry.Recorder {
	r := telemetry.NewRecorder()
	for i := 1; i <= n; i++ {
		r.Callback(i, nil, -float64(i)/10, 0)
	}
	return r
}

// unevenTrace reports one more count than values.
type unevenTrace struct{}

func (unevenTrace) Tail(int) ([]int, []float64) { return []int{1, 2}, []float64{1} }

func TestWriteConvergence_PNG(t *testing.T) {
	svc := NewService(DefaultOptions(), zerolog.Nop())

	tests := []struct {
		name   string
		points int
	}{
		{"full trace", 50},
		{"shorter than inset start", 12},
		{"empty", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, svc.WriteConvergence(&buf, trace(tt.points)))

			img, err := png.Decode(&buf)
			require.NoError(t, err)
			assert.Greater(t, img.Bounds().Dx(), 0)
			assert.Greater(t, img.Bounds().Dy(), 0)
		})
	}
}

func TestWriteConvergence_LengthMismatch(t *testing.T) {
	svc := NewService(DefaultOptions(), zerolog.Nop())
	var buf bytes.Buffer
	err := svc.WriteConvergence(&buf, unevenTrace{})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestRenderConvergence_File(t *testing.T) {
	svc := NewService(DefaultOptions(), zerolog.Nop())
	path := filepath.Join(t.TempDir(), "out", "convergence.png")

	require.NoError(t, svc.RenderConvergence(path, trace(45)))
	assert.FileExists(t, path)
}

func TestRenderConvergence_RemovesFileOnError(t *testing.T) {
	svc := NewService(DefaultOptions(), zerolog.Nop())
	path := filepath.Join(t.TempDir(), "convergence.png")

	err := svc.RenderConvergence(path, unevenTrace{})
	assert.ErrorIs(t, err, ErrLengthMismatch)
	assert.NoFileExists(t, path)
}

func TestNewPlot_LabelsInsetAxes(t *testing.T) {
	opts := DefaultOptions()
	svc := NewService(opts, zerolog.Nop())

	p, err := svc.newPlot(trace(50).Tail(opts.InsetFrom))
	require.NoError(t, err)
	assert.Equal(t, "VQE Iterations", p.X.Label.Text)
	assert.Equal(t, "Conformation Energy", p.Y.Label.Text)
}

func TestInsetCanvas(t *testing.T) {
	dc := draw.New(vgimg.New(10*vg.Inch, 10*vg.Inch))
	in := insetCanvas(dc, DefaultOptions().Inset)

	assert.InDelta(t, float64(4.4*vg.Inch), float64(in.Rectangle.Min.X), 1e-9)
	assert.InDelta(t, float64(5.1*vg.Inch), float64(in.Rectangle.Min.Y), 1e-9)
	assert.InDelta(t, float64(8.8*vg.Inch), float64(in.Rectangle.Max.X), 1e-9)
	assert.InDelta(t, float64(8.3*vg.Inch), float64(in.Rectangle.Max.Y), 1e-9)
}
