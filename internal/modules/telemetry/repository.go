package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/foldvqe/internal/database"
	"github.com/aristath/foldvqe/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// RunConfig is the configuration snapshot stored with each run.
type RunConfig struct {
	MainChain     string   `msgpack:"main_chain"`
	SideChains    []string `msgpack:"side_chains"`
	Interaction   string   `msgpack:"interaction"`
	PenaltyChiral float64  `msgpack:"penalty_chiral"`
	PenaltyBack   float64  `msgpack:"penalty_back"`
	Penalty1      float64  `msgpack:"penalty_1"`
	Seed          uint64   `msgpack:"seed"`
	Shots         int      `msgpack:"shots"`
	Alpha         float64  `msgpack:"alpha"`
	Optimizer     string   `msgpack:"optimizer"`
	MaxIter       int      `msgpack:"max_iter"`
	Reps          int      `msgpack:"reps"`
	Entanglement  string   `msgpack:"entanglement"`
}

// Run is a stored VQE run.
type Run struct {
	ID              string
	Sequence        string
	Interaction     string
	NumQubits       int
	Config          RunConfig
	Status          string // "running", "completed"
	OptimalValue    *float64
	BestBitstring   string
	Evaluations     int
	OptimizerStatus string // optimizer stop reason, e.g. "FunctionEvaluationLimit"
	StartedAt       time.Time
	CompletedAt     *time.Time
}

// Repository stores runs and their telemetry in the runs database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new run repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "runs").Logger(),
	}
}

// CreateRun inserts a running run and returns its id.
func (r *Repository) CreateRun(ctx context.Context, numQubits int, cfg RunConfig) (string, error) {
	blob, err := msgpack.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode run config: %w", err)
	}

	id := uuid.New().String()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO runs (id, sequence, interaction, num_qubits, config, status, started_at)
		VALUES (?, ?, ?, ?, ?, 'running', ?)
	`, id, cfg.MainChain, cfg.Interaction, numQubits, blob, time.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	r.log.Debug().Str("run_id", id).Str("sequence", cfg.MainChain).Msg("Created run")
	return id, nil
}

// AppendPoints stores the telemetry of a run in one transaction.
func (r *Repository) AppendPoints(ctx context.Context, runID string, points []Point) error {
	done := utils.MeasureQuery("append_points", r.log)
	err := database.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO run_points (run_id, eval_count, mean, std) VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare point insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range points {
			if _, err := stmt.ExecContext(ctx, runID, p.EvalCount, p.Mean, p.Std); err != nil {
				return fmt.Errorf("failed to insert point %d: %w", p.EvalCount, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	done(int64(len(points)))
	return nil
}

// Outcome is the result of a finished run.
type Outcome struct {
	OptimalValue    float64
	BestBitstring   string
	Evaluations     int
	OptimizerStatus string
}

// CompleteRun records the outcome of a run.
func (r *Repository) CompleteRun(ctx context.Context, runID string, out Outcome) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE runs
		SET status = 'completed', optimal_value = ?, best_bitstring = ?, evaluations = ?,
		    optimizer_status = ?, completed_at = ?
		WHERE id = ?
	`, out.OptimalValue, out.BestBitstring, out.Evaluations, out.OptimizerStatus, time.Now().Unix(), runID)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// GetRun loads a run by id.
func (r *Repository) GetRun(ctx context.Context, runID string) (*Run, error) {
	var (
		run         Run
		blob        []byte
		optimal     sql.NullFloat64
		best        sql.NullString
		optStatus   sql.NullString
		startedAt   int64
		completedAt sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, sequence, interaction, num_qubits, config, status, optimal_value,
		       best_bitstring, evaluations, optimizer_status, started_at, completed_at
		FROM runs WHERE id = ?
	`, runID).Scan(&run.ID, &run.Sequence, &run.Interaction, &run.NumQubits, &blob, &run.Status,
		&optimal, &best, &run.Evaluations, &optStatus, &startedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	if err := msgpack.Unmarshal(blob, &run.Config); err != nil {
		return nil, fmt.Errorf("failed to decode run config: %w", err)
	}
	if optimal.Valid {
		v := optimal.Float64
		run.OptimalValue = &v
	}
	run.BestBitstring = best.String
	run.OptimizerStatus = optStatus.String
	run.StartedAt = time.Unix(startedAt, 0)
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0)
		run.CompletedAt = &t
	}
	return &run, nil
}

// ListPoints returns the telemetry of a run ordered by evaluation count.
func (r *Repository) ListPoints(ctx context.Context, runID string) ([]Point, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT eval_count, mean, std FROM run_points WHERE run_id = ? ORDER BY eval_count
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.EvalCount, &p.Mean, &p.Std); err != nil {
			return nil, fmt.Errorf("failed to scan point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
