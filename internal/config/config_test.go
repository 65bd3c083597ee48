package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	require.Equal(t, DefaultRunConfig(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadParsesHCLAndAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.hcl")
	contents := `
solver {
  players    = 3
  iterations = 50000
  scheme     = "external"
}

abstraction "flop" {
  bucket_count = 500
}

subgame {
  alternatives = 4
}
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Solver.Players)
	require.Equal(t, 50000, cfg.Solver.Iterations)
	require.Equal(t, "floored", cfg.Solver.RegretScheduleName) // defaulted
	require.Equal(t, "linear", cfg.Solver.PolicyScheduleName)  // defaulted
	require.Len(t, cfg.Abstraction, 1)
	require.Equal(t, "flop", cfg.Abstraction[0].Name)
	require.Equal(t, 500, cfg.Abstraction[0].BucketCount)
	require.Equal(t, 4, cfg.Subgame.Alternatives)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadScheme(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.Solver.SchemeName = "bogus"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsTooFewPlayers(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.Solver.Players = 1
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveBucketCount(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.Abstraction = []AbstractionStreet{{Name: "river", BucketCount: 0}}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroSubgameAlternatives(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.Subgame.Alternatives = 0
	require.Error(t, cfg.Validate())
}
