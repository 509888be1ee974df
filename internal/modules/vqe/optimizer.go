package vqe

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/optimize"
)

// Method names a derivative-free gonum optimizer.
type Method string

const (
	MethodNelderMead Method = "nelder-mead"
	MethodCMAES      Method = "cmaes"
)

// Optimizer configures the classical minimisation loop. MaxIter bounds the number of objective
// evaluations, matching the budget semantics of COBYLA's maxiter.
type Optimizer struct {
	Method  Method
	MaxIter int
}

// NewOptimizer validates the method name and evaluation budget.
func NewOptimizer(method string, maxIter int) (*Optimizer, error) {
	m := Method(method)
	switch m {
	case "":
		m = MethodNelderMead
	case MethodNelderMead, MethodCMAES:
	default:
		return nil, fmt.Errorf("unknown optimizer %q", method)
	}
	if maxIter < 1 {
		return nil, fmt.Errorf("optimizer budget must be positive, got %d", maxIter)
	}
	return &Optimizer{Method: m, MaxIter: maxIter}, nil
}

func (o *Optimizer) method(seed uint64) optimize.Method {
	switch o.Method {
	case MethodCMAES:
		return &optimize.CmaEsChol{
			InitStepSize: 0.5,
			Src:          rand.NewPCG(seed, seed^0x6a09e667f3bcc909),
		}
	default:
		// A unit initial simplex matches COBYLA's default rhobeg.
		return &optimize.NelderMead{SimplexSize: 1}
	}
}

func (o *Optimizer) settings() *optimize.Settings {
	return &optimize.Settings{
		FuncEvaluations: o.MaxIter,
		Concurrent:      1,
	}
}
