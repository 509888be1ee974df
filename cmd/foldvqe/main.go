// Package main folds a short peptide on the tetrahedral lattice with a sampling VQE.
//
// The pipeline encodes the peptide into a diagonal qubit operator, minimises its CVaR
// expectation over a RealAmplitudes ansatz, prints the operator and the raw result, and
// renders the convergence trace. All parameters come from internal/config.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/aristath/foldvqe/internal/config"
	"github.com/aristath/foldvqe/internal/database"
	"github.com/aristath/foldvqe/internal/modules/charts"
	"github.com/aristath/foldvqe/internal/modules/circuit"
	"github.com/aristath/foldvqe/internal/modules/folding"
	"github.com/aristath/foldvqe/internal/modules/telemetry"
	"github.com/aristath/foldvqe/internal/modules/vqe"
	"github.com/aristath/foldvqe/internal/utils"
	"github.com/aristath/foldvqe/pkg/logger"
	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Fatal().Err(err).Msg("Folding run failed")
	}
}

// dumper prints results without pointer addresses so the output is stable across runs.
var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	peptide, err := folding.NewPeptide(cfg.MainChain, cfg.SideChains)
	if err != nil {
		return fmt.Errorf("failed to build peptide: %w", err)
	}
	interaction, err := newInteraction(cfg.Interaction, cfg.Seed)
	if err != nil {
		return err
	}
	penalties, err := folding.NewPenaltyParameters(cfg.PenaltyChiral, cfg.PenaltyBack, cfg.Penalty1)
	if err != nil {
		return err
	}
	problem, err := folding.NewProteinFoldingProblem(peptide, interaction, penalties, log)
	if err != nil {
		return fmt.Errorf("failed to create folding problem: %w", err)
	}

	encodeTimer := utils.StartStage("encode", log)
	op, err := problem.QubitOp()
	if err != nil {
		return fmt.Errorf("failed to encode qubit operator: %w", err)
	}
	encodeTimer.Stop()
	fmt.Println(op)

	solver, recorder, err := newSolver(cfg, log)
	if err != nil {
		return err
	}

	var (
		repo  *telemetry.Repository
		runID string
	)
	if cfg.DBPath != "" {
		db, err := database.New(database.Config{
			Path:    cfg.DBPath,
			Profile: database.ProfileStandard,
			Name:    "runs",
		})
		if err != nil {
			return fmt.Errorf("failed to open runs database: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("failed to migrate runs database: %w", err)
		}
		repo = telemetry.NewRepository(db.Conn(), log)
		runID, err = repo.CreateRun(ctx, op.NumQubits(), runConfig(cfg))
		if err != nil {
			return err
		}
	}

	log.Info().
		Str("sequence", peptide.MainChain()).
		Str("interaction", interaction.Name()).
		Int("qubits", op.NumQubits()).
		Int("terms", op.Len()).
		Msg("Encoded folding problem")

	result, err := solver.ComputeMinimumEigenvalue(ctx, op)
	if err != nil {
		return fmt.Errorf("vqe failed: %w", err)
	}
	dumper.Dump(result)

	summary := recorder.Summary()
	log.Info().
		Float64("optimal_value", result.OptimalValue).
		Int("evaluations", summary.Evaluations).
		Float64("min_value", summary.Min).
		Float64("last_value", summary.Last).
		Dur("optimizer_time", result.OptimizerTime).
		Msg("VQE finished")

	conformation, err := problem.Interpret(result.BestMeasurement.State)
	if err != nil {
		return fmt.Errorf("failed to interpret best measurement: %w", err)
	}
	fmt.Printf("Best conformation %s: turns %v, energy %.6f, self-avoiding %t\n",
		result.BestMeasurement.Bitstring, conformation.Turns, conformation.Energy, conformation.SelfAvoiding())

	if cfg.XYZPath != "" {
		if err := writeXYZ(cfg.XYZPath, conformation); err != nil {
			return err
		}
		log.Info().Str("path", cfg.XYZPath).Msg("Wrote conformation")
	}

	renderTimer := utils.StartStage("render", log)
	chartSvc := charts.NewService(charts.DefaultOptions(), log)
	if err := chartSvc.RenderConvergence(cfg.PlotPath, recorder); err != nil {
		return fmt.Errorf("failed to render convergence chart: %w", err)
	}
	renderTimer.Stop()

	if repo != nil {
		if err := repo.AppendPoints(ctx, runID, recorder.Points()); err != nil {
			return err
		}
		if err := repo.CompleteRun(ctx, runID, telemetry.Outcome{
			OptimalValue:    result.OptimalValue,
			BestBitstring:   result.BestMeasurement.Bitstring,
			Evaluations:     recorder.Len(),
			OptimizerStatus: result.Status,
		}); err != nil {
			return err
		}
		log.Info().Str("run_id", runID).Str("path", cfg.DBPath).Msg("Stored run")
	}
	return nil
}

func newInteraction(name string, seed uint64) (folding.Interaction, error) {
	switch name {
	case "", "miyazawa-jernigan", "mj":
		return folding.NewMiyazawaJerniganInteraction(), nil
	case "random":
		return folding.NewRandomInteraction(seed), nil
	default:
		return nil, fmt.Errorf("unknown interaction %q", name)
	}
}

func newSolver(cfg *config.Config, log zerolog.Logger) (*vqe.VQE, *telemetry.Recorder, error) {
	entanglement, err := circuit.ParseEntanglement(cfg.Entanglement)
	if err != nil {
		return nil, nil, err
	}
	optimizer, err := vqe.NewOptimizer(cfg.Optimizer, cfg.MaxIter)
	if err != nil {
		return nil, nil, err
	}
	simulator, err := circuit.NewSimulator(cfg.Shots, cfg.Seed)
	if err != nil {
		return nil, nil, err
	}
	cvar, err := vqe.NewCVaRExpectation(cfg.Alpha)
	if err != nil {
		return nil, nil, err
	}

	recorder := telemetry.NewRecorder()
	solver, err := vqe.New(vqe.Options{
		Ansatz:      vqe.RealAmplitudesBuilder(cfg.Reps, entanglement),
		Optimizer:   optimizer,
		Simulator:   simulator,
		Expectation: cvar,
		Callback:    recorder.Callback,
		Seed:        cfg.Seed,
	}, log)
	if err != nil {
		return nil, nil, err
	}
	return solver, recorder, nil
}

func runConfig(cfg *config.Config) telemetry.RunConfig {
	return telemetry.RunConfig{
		MainChain:     cfg.MainChain,
		SideChains:    cfg.SideChains,
		Interaction:   cfg.Interaction,
		PenaltyChiral: cfg.PenaltyChiral,
		PenaltyBack:   cfg.PenaltyBack,
		Penalty1:      cfg.Penalty1,
		Seed:          cfg.Seed,
		Shots:         cfg.Shots,
		Alpha:         cfg.Alpha,
		Optimizer:     cfg.Optimizer,
		MaxIter:       cfg.MaxIter,
		Reps:          cfg.Reps,
		Entanglement:  cfg.Entanglement,
	}
}

func writeXYZ(path string, c *folding.Conformation) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create xyz directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create xyz file: %w", err)
	}
	if err := c.WriteXYZ(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to close xyz file: %w", err)
	}
	return nil
}
