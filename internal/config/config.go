// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds application configuration
type Config struct {
	MainChain  string
	SideChains []string // One entry per main-chain residue, "" for none

	Interaction   string // "miyazawa-jernigan" or "random"
	PenaltyChiral float64
	PenaltyBack   float64
	Penalty1      float64

	Seed         uint64 // Feeds the initial point, the sampler and the random interaction
	Shots        int    // 0 = exact probabilities
	Alpha        float64
	Optimizer    string
	MaxIter      int
	Reps         int
	Entanglement string

	PlotPath string
	XYZPath  string // Empty = no XYZ output
	DBPath   string // Empty = runs are not stored

	LogLevel  string
	LogPretty bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	mainChain := getEnv("FOLDVQE_MAIN_CHAIN", "APRLRFY")
	seed, err := getEnvAsUint64("FOLDVQE_SEED", 23)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		MainChain:     mainChain,
		SideChains:    getEnvAsList("FOLDVQE_SIDE_CHAINS", make([]string, len(mainChain))),
		Interaction:   getEnv("FOLDVQE_INTERACTION", "miyazawa-jernigan"),
		PenaltyChiral: getEnvAsFloat("FOLDVQE_PENALTY_CHIRAL", 10),
		PenaltyBack:   getEnvAsFloat("FOLDVQE_PENALTY_BACK", 10),
		Penalty1:      getEnvAsFloat("FOLDVQE_PENALTY_1", 10),
		Seed:          seed,
		Shots:         getEnvAsInt("FOLDVQE_SHOTS", 8192),
		Alpha:         getEnvAsFloat("FOLDVQE_ALPHA", 0.1),
		Optimizer:     getEnv("FOLDVQE_OPTIMIZER", "nelder-mead"),
		MaxIter:       getEnvAsInt("FOLDVQE_MAX_ITER", 50),
		Reps:          getEnvAsInt("FOLDVQE_REPS", 1),
		Entanglement:  getEnv("FOLDVQE_ENTANGLEMENT", "reverse_linear"),
		PlotPath:      getEnv("FOLDVQE_PLOT_PATH", "convergence.png"),
		XYZPath:       getEnv("FOLDVQE_XYZ_PATH", ""),
		DBPath:        getEnv("FOLDVQE_DB_PATH", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPretty:     getEnvAsBool("LOG_PRETTY", true),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the ranges the pipeline cannot recover from. Residue letters and penalty
// values are checked again by the folding package.
func (c *Config) Validate() error {
	if c.MainChain == "" {
		return fmt.Errorf("%w: main chain is empty", ErrInvalidConfig)
	}
	if len(c.SideChains) != len(c.MainChain) {
		return fmt.Errorf("%w: %d side chains for %d residues", ErrInvalidConfig, len(c.SideChains), len(c.MainChain))
	}
	if c.Shots < 0 {
		return fmt.Errorf("%w: shots must be non-negative, got %d", ErrInvalidConfig, c.Shots)
	}
	if c.MaxIter < 1 {
		return fmt.Errorf("%w: max iterations must be positive, got %d", ErrInvalidConfig, c.MaxIter)
	}
	if c.Reps < 1 {
		return fmt.Errorf("%w: reps must be positive, got %d", ErrInvalidConfig, c.Reps)
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("%w: alpha must be in (0, 1], got %g", ErrInvalidConfig, c.Alpha)
	}
	if c.PlotPath == "" {
		return fmt.Errorf("%w: plot path is empty", ErrInvalidConfig)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvAsUint64 rejects malformed values instead of falling back, so a negative seed
// never wraps around.
func getEnvAsUint64(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an unsigned integer", ErrInvalidConfig, key, value)
	}
	return v, nil
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated value; "A,,C" keeps the empty middle entry.
func getEnvAsList(key string, defaultValue []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return defaultValue
}
