// Package config loads driver configuration from an HCL file: bucket
// counts per street, which regret/policy schedule and sampling scheme to
// run, and the subgame alternatives count. Same hclparse + gohcl.DecodeBody
// loading shape and "file absent -> defaults" fallback used elsewhere in
// this codebase for table/bot configuration.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// RunConfig is the complete on-disk configuration for one solver run.
type RunConfig struct {
	Solver      SolverSettings      `hcl:"solver,block"`
	Abstraction []AbstractionStreet `hcl:"abstraction,block"`
	Subgame     *SubgameSettings    `hcl:"subgame,block"`
}

// SolverSettings are the top-level training-loop knobs.
type SolverSettings struct {
	Players            int    `hcl:"players,optional"`
	Iterations         int    `hcl:"iterations,optional"`
	SchemeName         string `hcl:"scheme,optional"`
	RegretScheduleName string `hcl:"regret_schedule,optional"`
	PolicyScheduleName string `hcl:"policy_schedule,optional"`
	ParallelTables     int    `hcl:"parallel_tables,optional"`
	Seed               int64  `hcl:"seed,optional"`
}

// AbstractionStreet configures one street's bucket count in the
// hierarchical clustering pipeline.
type AbstractionStreet struct {
	Name        string `hcl:"name,label"`
	BucketCount int    `hcl:"bucket_count"`
}

// SubgameSettings configures depth-limited re-solving.
type SubgameSettings struct {
	Alternatives int     `hcl:"alternatives,optional"`
	Delta        float64 `hcl:"delta,optional"`
}

// DefaultRunConfig returns the working defaults: external sampling,
// Floored (CFR+) regret, linear policy, 2 subgame alternatives.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		Solver: SolverSettings{
			Players:            2,
			Iterations:         0,
			SchemeName:         "external",
			RegretScheduleName: "floored",
			PolicyScheduleName: "linear",
			ParallelTables:     1,
		},
		Abstraction: []AbstractionStreet{
			{Name: "preflop", BucketCount: 169},
			{Name: "flop", BucketCount: 1000},
			{Name: "turn", BucketCount: 500},
			{Name: "river", BucketCount: 200},
		},
		Subgame: &SubgameSettings{Alternatives: 2, Delta: 0.1},
	}
}

// Load reads filename as HCL, falling back to DefaultRunConfig if the file
// doesn't exist, and applies field-level defaults for anything left unset.
func Load(filename string) (*RunConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultRunConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: parsing %s: %s", filename, diags.Error())
	}

	cfg := &RunConfig{}
	diags = gohcl.DecodeBody(file.Body, nil, cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: decoding %s: %s", filename, diags.Error())
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *RunConfig) {
	defaults := DefaultRunConfig()
	if cfg.Solver.Players == 0 {
		cfg.Solver.Players = defaults.Solver.Players
	}
	if cfg.Solver.SchemeName == "" {
		cfg.Solver.SchemeName = defaults.Solver.SchemeName
	}
	if cfg.Solver.RegretScheduleName == "" {
		cfg.Solver.RegretScheduleName = defaults.Solver.RegretScheduleName
	}
	if cfg.Solver.PolicyScheduleName == "" {
		cfg.Solver.PolicyScheduleName = defaults.Solver.PolicyScheduleName
	}
	if cfg.Solver.ParallelTables == 0 {
		cfg.Solver.ParallelTables = defaults.Solver.ParallelTables
	}
	if cfg.Subgame == nil {
		cfg.Subgame = defaults.Subgame
	} else if cfg.Subgame.Alternatives == 0 {
		cfg.Subgame.Alternatives = defaults.Subgame.Alternatives
	}
}

// Validate checks that RunConfig describes a runnable solver.
func (c *RunConfig) Validate() error {
	if c.Solver.Players < 2 {
		return fmt.Errorf("config: players must be >= 2, got %d", c.Solver.Players)
	}
	if c.Solver.Iterations < 0 {
		return fmt.Errorf("config: iterations must be >= 0, got %d", c.Solver.Iterations)
	}
	validSchemes := map[string]bool{"external": true, "outcome": true, "subgame": true, "vanilla": true}
	if !validSchemes[c.Solver.SchemeName] {
		return fmt.Errorf("config: unknown sampling scheme %q", c.Solver.SchemeName)
	}
	validRegret := map[string]bool{"summed": true, "floored": true, "linear": true, "pluribus": true, "discounted": true}
	if !validRegret[c.Solver.RegretScheduleName] {
		return fmt.Errorf("config: unknown regret schedule %q", c.Solver.RegretScheduleName)
	}
	validPolicy := map[string]bool{"constant": true, "linear": true, "quadratic": true, "exponential": true}
	if !validPolicy[c.Solver.PolicyScheduleName] {
		return fmt.Errorf("config: unknown policy schedule %q", c.Solver.PolicyScheduleName)
	}
	for _, street := range c.Abstraction {
		if street.BucketCount <= 0 {
			return fmt.Errorf("config: street %s: bucket_count must be positive", street.Name)
		}
	}
	if c.Subgame != nil && c.Subgame.Alternatives < 1 {
		return fmt.Errorf("config: subgame alternatives must be >= 1")
	}
	return nil
}
