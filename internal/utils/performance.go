// Package utils holds small helpers shared by the pipeline stages.
package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// SlowStageThreshold is the duration above which a stage is logged as slow.
const SlowStageThreshold = 30 * time.Second

// StageTimer measures one pipeline stage
type StageTimer struct {
	start time.Time
	stage string
	log   zerolog.Logger
	slow  time.Duration
}

// StartStage starts timing stage.
func StartStage(stage string, log zerolog.Logger) *StageTimer {
	return &StageTimer{
		start: time.Now(),
		stage: stage,
		log:   log,
		slow:  SlowStageThreshold,
	}
}

// Stop logs the elapsed time at debug level, or at warn level past the slow threshold.
func (t *StageTimer) Stop() time.Duration {
	duration := time.Since(t.start)

	event := t.log.Debug()
	if duration > t.slow {
		event = t.log.Warn()
	}
	event.
		Str("stage", t.stage).
		Dur("duration_ms", duration).
		Msg("Stage completed")

	return duration
}

// MeasureQuery returns a func that logs a database write together with its affected rows.
//
// Usage:
//
//	done := utils.MeasureQuery("append_points", log)
//	// ... write rows
//	done(int64(len(points)))
func MeasureQuery(queryName string, log zerolog.Logger) func(rowsAffected int64) {
	start := time.Now()

	return func(rowsAffected int64) {
		duration := time.Since(start)

		log.Debug().
			Str("query", queryName).
			Dur("duration_ms", duration).
			Int64("rows_affected", rowsAffected).
			Msg("Database query completed")

		if duration > 5*time.Second {
			log.Warn().
				Str("query", queryName).
				Dur("duration", duration).
				Msg("Slow database query detected")
		}
	}
}
