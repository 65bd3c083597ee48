package rps

import (
	"testing"

	"github.com/lox/cfrsolver/internal/cfr"
	"github.com/stretchr/testify/require"
)

func TestPayoffZeroSum(t *testing.T) {
	for _, p1 := range allMoves {
		for _, p2 := range allMoves {
			s := Root().Apply(p1).Apply(p2)
			require.Equal(t, cfr.Terminal(), s.Turn())
			u1 := s.Payoff(cfr.From(0))
			u2 := s.Payoff(cfr.From(1))
			require.InDelta(t, 0, u1+u2, 1e-12, "p1=%v p2=%v", p1, p2)
		}
	}
}

func TestPayoffMatrix(t *testing.T) {
	cases := []struct {
		p1, p2 Move
		want   float64
	}{
		{Rock, Rock, 0},
		{Rock, Scissors, 1},
		{Rock, Paper, -1},
		{Paper, Rock, 1},
		{Scissors, Paper, 1},
	}
	for _, c := range cases {
		s := Root().Apply(c.p1).Apply(c.p2)
		require.Equal(t, c.want, s.Payoff(cfr.From(0)))
	}
}

func TestApplyOnTerminalPanics(t *testing.T) {
	s := Root().Apply(Rock).Apply(Paper)
	require.Panics(t, func() { s.Apply(Rock) })
}

func TestKeyCollapsesSimultaneousMoves(t *testing.T) {
	// P2's information set must not depend on P1's actual move: it is
	// the same Info no matter which move got it there.
	a := Root().Apply(Rock).(State)
	b := Root().Apply(Scissors).(State)
	require.Equal(t, a.Key(), b.Key())
}

func TestBiasedDoublesRockOverScissors(t *testing.T) {
	b := BiasedRoot().Apply(Rock).Apply(Scissors).(Biased)
	require.Equal(t, 2.0, b.Payoff(cfr.From(0)))
	require.Equal(t, -1.0, b.Payoff(cfr.From(1)))
}

func TestBiasedUnaffectedElsewhere(t *testing.T) {
	b := BiasedRoot().Apply(Paper).Apply(Rock).(Biased)
	require.Equal(t, 1.0, b.Payoff(cfr.From(0)))
}

func TestCodecRoundTrip(t *testing.T) {
	var c Codec
	for _, m := range allMoves {
		require.Equal(t, m, c.DecodeEdge(c.EncodeEdge(m)))
	}
}

func TestEncoderInfo(t *testing.T) {
	var enc Encoder
	root := Root()
	info := enc.Info(root)
	require.Equal(t, root.Key(), info.Key())

	biased := BiasedRoot()
	info = enc.Info(biased)
	require.Equal(t, biased.Key(), info.Key())
}
