// Package charts renders the convergence figure of a VQE run.
package charts

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// ErrLengthMismatch is returned when counts and values differ in length.
var ErrLengthMismatch = errors.New("counts and values have different lengths")

// Inset is a sub-axes placement in figure fractions, measured from the bottom-left corner.
type Inset struct {
	Left, Bottom, Width, Height float64
}

// Options controls the convergence figure.
type Options struct {
	Width  vg.Length
	Height vg.Length
	XLabel string
	YLabel string
	Inset  Inset
	// InsetFrom is the first trace index shown in the inset.
	InsetFrom int
}

// DefaultOptions returns the standard figure layout.
func DefaultOptions() Options {
	return Options{
		Width:     6.4 * vg.Inch,
		Height:    4.8 * vg.Inch,
		XLabel:    "VQE Iterations",
		YLabel:    "Conformation Energy",
		Inset:     Inset{Left: 0.44, Bottom: 0.51, Width: 0.44, Height: 0.32},
		InsetFrom: 40,
	}
}

// Service renders convergence figures
type Service struct {
	opts Options
	log  zerolog.Logger
}

// NewService creates a new charts service
func NewService(opts Options, log zerolog.Logger) *Service {
	return &Service{
		opts: opts,
		log:  log.With().Str("service", "charts").Logger(),
	}
}

// Trace is a recorded convergence trace. Tail(from) returns the evaluation counts and values
// from index from onwards, empty when the trace is shorter.
type Trace interface {
	Tail(from int) ([]int, []float64)
}

// RenderConvergence writes the figure as PNG to path. A partially written file is removed on error.
func (s *Service) RenderConvergence(path string, trace Trace) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create chart directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}

	if err := s.WriteConvergence(f, trace); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to close chart file: %w", err)
	}

	counts, _ := trace.Tail(0)
	s.log.Info().
		Str("path", path).
		Int("points", len(counts)).
		Msg("Rendered convergence chart")
	return nil
}

// WriteConvergence draws the full trace with an inset of the trace from InsetFrom onwards and
// encodes it as PNG. The inset is drawn empty when the trace is shorter than InsetFrom.
func (s *Service) WriteConvergence(w io.Writer, trace Trace) error {
	full, err := s.newPlot(trace.Tail(0))
	if err != nil {
		return err
	}
	inset, err := s.newPlot(trace.Tail(s.opts.InsetFrom))
	if err != nil {
		return err
	}

	img := vgimg.New(s.opts.Width, s.opts.Height)
	dc := draw.New(img)
	full.Draw(dc)
	inset.Draw(insetCanvas(dc, s.opts.Inset))

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode chart: %w", err)
	}
	return nil
}

func (s *Service) newPlot(counts []int, values []float64) (*plot.Plot, error) {
	if len(counts) != len(values) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(counts), len(values))
	}

	p := plot.New()
	p.X.Label.Text = s.opts.XLabel
	p.Y.Label.Text = s.opts.YLabel
	p.Add(plotter.NewGrid())

	if len(counts) == 0 {
		return p, nil
	}

	pts := make(plotter.XYs, len(counts))
	for i := range counts {
		pts[i].X = float64(counts[i])
		pts[i].Y = values[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to build line: %w", err)
	}
	p.Add(line)
	return p, nil
}

func insetCanvas(dc draw.Canvas, in Inset) draw.Canvas {
	size := dc.Rectangle.Size()
	origin := dc.Rectangle.Min
	return draw.Canvas{
		Canvas: dc.Canvas,
		Rectangle: vg.Rectangle{
			Min: vg.Point{
				X: origin.X + vg.Length(in.Left)*size.X,
				Y: origin.Y + vg.Length(in.Bottom)*size.Y,
			},
			Max: vg.Point{
				X: origin.X + vg.Length(in.Left+in.Width)*size.X,
				Y: origin.Y + vg.Length(in.Bottom+in.Height)*size.Y,
			},
		},
	}
}
