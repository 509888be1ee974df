// Package telemetry collects the per-evaluation trace of a VQE run and stores run history.
package telemetry

import (
	"gonum.org/v1/gonum/floats"
)

// Point is one recorded objective evaluation.
type Point struct {
	EvalCount int
	Mean      float64
	Std       float64
}

// Recorder accumulates the convergence trace through its Callback. Counts and Values grow in
// lockstep, in call order, with no filtering or deduplication.
type Recorder struct {
	Counts []int
	Values []float64
	stds   []float64
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Callback matches vqe.Callback.
func (r *Recorder) Callback(evalCount int, _ []float64, mean, std float64) {
	r.Counts = append(r.Counts, evalCount)
	r.Values = append(r.Values, mean)
	r.stds = append(r.stds, std)
}

// Len returns the number of recorded evaluations.
func (r *Recorder) Len() int {
	return len(r.Counts)
}

// Tail returns the trace from index from onwards. It is empty, not an error, when fewer
// evaluations were recorded.
func (r *Recorder) Tail(from int) ([]int, []float64) {
	if from < 0 {
		from = 0
	}
	if from >= len(r.Counts) {
		return []int{}, []float64{}
	}
	return r.Counts[from:], r.Values[from:]
}

// Points returns the trace as records, for persistence.
func (r *Recorder) Points() []Point {
	points := make([]Point, len(r.Counts))
	for i := range r.Counts {
		points[i] = Point{EvalCount: r.Counts[i], Mean: r.Values[i], Std: r.stds[i]}
	}
	return points
}

// Summary describes a recorded trace.
type Summary struct {
	Evaluations int
	Min         float64
	Max         float64
	Last        float64
}

// Summary returns the extremes and final value of the trace. An empty trace yields the zero Summary.
func (r *Recorder) Summary() Summary {
	if len(r.Values) == 0 {
		return Summary{}
	}
	return Summary{
		Evaluations: len(r.Values),
		Min:         floats.Min(r.Values),
		Max:         floats.Max(r.Values),
		Last:        r.Values[len(r.Values)-1],
	}
}
