package config

import (
	"fmt"

	"github.com/lox/cfrsolver/internal/cfr/profile"
	"github.com/lox/cfrsolver/internal/cfr/tree"
)

// Scheme resolves the Solver block's scheme string to a tree.Scheme. Call
// only after Validate has accepted the config.
func (s SolverSettings) Scheme() tree.Scheme {
	switch s.SchemeName {
	case "external":
		return tree.External
	case "outcome":
		return tree.Outcome
	case "subgame":
		return tree.Subgame
	case "vanilla":
		return tree.Vanilla
	default:
		panic(fmt.Sprintf("config: unresolved sampling scheme %q; call Validate first", s.SchemeName))
	}
}

// RegretSchedule resolves the Solver block's regret_schedule string to the
// profile.RegretSchedule it names.
func (s SolverSettings) RegretSchedule() profile.RegretSchedule {
	switch s.RegretScheduleName {
	case "summed":
		return profile.Summed{}
	case "floored":
		return profile.Floored{}
	case "linear":
		return profile.Linear{}
	case "pluribus":
		return profile.Pluribus{}
	case "discounted":
		return profile.NewDiscounted()
	default:
		panic(fmt.Sprintf("config: unresolved regret schedule %q; call Validate first", s.RegretScheduleName))
	}
}

// PolicySchedule resolves the Solver block's policy_schedule string to the
// profile.PolicySchedule it names.
func (s SolverSettings) PolicySchedule() profile.PolicySchedule {
	switch s.PolicyScheduleName {
	case "constant":
		return profile.Constant{}
	case "linear":
		return profile.LinearPolicy{}
	case "quadratic":
		return profile.QuadraticPolicy{}
	case "exponential":
		return profile.ExponentialPolicy{}
	default:
		panic(fmt.Sprintf("config: unresolved policy schedule %q; call Validate first", s.PolicyScheduleName))
	}
}
