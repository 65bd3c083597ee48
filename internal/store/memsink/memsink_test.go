package memsink

import (
	"context"
	"testing"

	"github.com/lox/cfrsolver/internal/store"
	"github.com/stretchr/testify/require"
)

func TestWriteAndReadBlueprintRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	rows := []store.BlueprintRow{
		{History: 1, Present: 1, Choices: 3, Edge: 0, Weight: 0.5, Regret: 1.2, EValue: 0.1, Counts: 10},
		{History: 1, Present: 1, Choices: 3, Edge: 1, Weight: 0.3, Regret: -0.4, EValue: 0.1, Counts: 10},
	}
	require.NoError(t, s.WriteBlueprint(ctx, "river", rows))

	got, err := s.ReadBlueprint(ctx, "river")
	require.NoError(t, err)
	require.Equal(t, rows, got)
}

func TestWriteEpochRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.WriteEpoch(ctx, 42))

	epoch, err := s.ReadEpoch(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(42), epoch)
}

// TestSaveAndLoadFileRoundTrip is the R1 round-trip law: serialising and
// re-hydrating an artifact yields a structurally equal artifact.
func TestSaveAndLoadFileRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.WriteLookup(ctx, "flop", []store.LookupRow{{SituationID: 7, Bucket: 2}}))
	require.NoError(t, s.WriteEpoch(ctx, 5))

	path := t.TempDir() + "/snapshot.json"
	require.NoError(t, s.SaveFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)

	epoch, err := loaded.ReadEpoch(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(5), epoch)

	rows, err := loaded.ReadLookup(ctx, "flop")
	require.NoError(t, err)
	require.Equal(t, []store.LookupRow{{SituationID: 7, Bucket: 2}}, rows)
}

func TestFreezeIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Freeze(ctx, store.KindBlueprint, "turn"))
	require.NoError(t, s.Freeze(ctx, store.KindBlueprint, "turn"))
}
