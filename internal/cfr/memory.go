package cfr

// Memory is the per-(Info, Edge) aggregate cell: accumulated counterfactual
// regret, accumulated (discounted) strategy mass, and a visit counter kept
// purely for diagnostics and normalisation.
type Memory struct {
	Regret Utility
	Policy Probability
	Counts uint32
}

// Utility is a solver-internal float alias; kept distinct from Probability
// so schedule signatures read unambiguously at call sites.
type Utility = float64

// Probability is a solver-internal float alias for strategy mass.
type Probability = float64

// Counterfactual is the atomic update record a Solver hands to a Profile:
// one Info's row, the regret and strategy-mass contribution per edge under
// that Info, and the node's expected value under the current policy.
type Counterfactual[E Edge[E]] struct {
	Regret map[E]Utility
	Policy map[E]Probability
	EValue Utility
}

// Decision is a row read back from a trained Profile: an edge, its
// normalised probability mass, and the raw visit count backing it.
type Decision[E Edge[E]] struct {
	Edge   E
	Mass   Probability
	Counts uint32
}
