package solver

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/lox/cfrsolver/internal/cfr"
	"github.com/lox/cfrsolver/internal/cfr/profile"
	"github.com/lox/cfrsolver/internal/cfr/tree"
)

const checkpointFileVersion = 1

// checkpointSnapshot is a Solver's wire form: a poker-specific RegretTable
// dump generalised to the generic profile.Table rows, with the RNG
// position recorded so a resumed run draws the same per-table seeds it
// would have drawn had it never stopped. Config's
// schedules are Go interfaces (Summed{}, Discounted{...}, ...) that can't
// round-trip through encoding/json without a concrete type already in
// hand, so only the scalar fields a resumed run can sanity-check are
// stored; the schedules themselves are supplied fresh to Resume by the
// caller, exactly as they are to New.
type checkpointSnapshot struct {
	Version  int                   `json:"version"`
	Epoch    int64                 `json:"epoch"`
	RNGSeed  int64                 `json:"rng_seed"`
	RNGDraws int64                 `json:"rng_draws"`
	Players  int                   `json:"players"`
	Scheme   uint8                 `json:"scheme"`
	Rows     []profile.RowSnapshot `json:"rows"`
}

// SaveCheckpoint writes the Solver's state to path via a temp-file-then-
// rename, so a crash or a failed write can never publish a half-written
// checkpoint. Requires a non-nil Codec (see New).
func (s *Solver[E]) SaveCheckpoint(path string) error {
	if s.codec == nil {
		return cfr.Invariantf("solver: checkpoint requested but no Codec was configured")
	}

	s.rngMu.Lock()
	rngDraws := s.rngDraws
	s.rngMu.Unlock()

	snap := checkpointSnapshot{
		Version:  checkpointFileVersion,
		Epoch:    s.epoch.Load(),
		RNGSeed:  s.rngSeed,
		RNGDraws: rngDraws,
		Players:  s.cfg.Players,
		Scheme:   uint8(s.cfg.Scheme),
		Rows:     s.table.Snapshot(s.codec),
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return cfr.IOErrorf(err, "create checkpoint dir %s", dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return cfr.IOErrorf(err, "create checkpoint temp file")
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return cfr.IOErrorf(err, "encode checkpoint")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return cfr.IOErrorf(err, "close checkpoint temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return cfr.IOErrorf(err, "persist checkpoint to %s", path)
	}
	return nil
}

// CheckpointHeader is the scalar fields a caller needs before it can build
// the Config Resume requires -- Resume validates Config against the saved
// header, so inspecting it first is the only way to reconstruct one for a
// checkpoint whose original run parameters aren't otherwise on hand (e.g.
// an eval-only driver that never trained this checkpoint itself).
type CheckpointHeader struct {
	Players int
	Scheme  tree.Scheme
	Epoch   int64
}

// InspectCheckpoint reads path's header fields without restoring a Solver.
func InspectCheckpoint(path string) (CheckpointHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return CheckpointHeader{}, cfr.IOErrorf(err, "open checkpoint %s", path)
	}
	defer f.Close()

	var snap checkpointSnapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return CheckpointHeader{}, cfr.IOErrorf(err, "decode checkpoint %s", path)
	}
	return CheckpointHeader{Players: snap.Players, Scheme: tree.Scheme(snap.Scheme), Epoch: snap.Epoch}, nil
}

// Resume restores a Solver previously saved with SaveCheckpoint. cfg,
// encoder, root and codec are the same values the original Run was
// constructed with (a resumed run is not reproducible otherwise); Resume
// sanity-checks Players and Scheme against the checkpoint and replays RNG
// draws to the saved position so the sequence of per-table seeds a
// continued Run produces matches what an uninterrupted run would have.
func Resume[E cfr.Edge[E]](path string, cfg Config, encoder tree.Encoder[E], root RootFactory[E], codec profile.Codec[E]) (*Solver[E], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cfr.IOErrorf(err, "open checkpoint %s", path)
	}
	defer f.Close()

	var snap checkpointSnapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, cfr.IOErrorf(err, "decode checkpoint %s", path)
	}
	if snap.Version != checkpointFileVersion {
		return nil, fmt.Errorf("solver: unsupported checkpoint version %d", snap.Version)
	}
	if snap.Players != cfg.Players {
		return nil, cfr.Invariantf("solver: checkpoint was saved with %d players, resuming with %d", snap.Players, cfg.Players)
	}
	if tree.Scheme(snap.Scheme) != cfg.Scheme {
		return nil, cfr.Invariantf("solver: checkpoint was saved with scheme %s, resuming with %s", tree.Scheme(snap.Scheme), cfg.Scheme)
	}

	s, err := New[E](cfg, encoder, root, codec)
	if err != nil {
		return nil, err
	}
	s.epoch.Store(snap.Epoch)
	s.rngSeed = snap.RNGSeed
	s.rng = rand.New(rand.NewSource(snap.RNGSeed))
	for i := int64(0); i < snap.RNGDraws; i++ {
		s.rng.Int63()
	}
	s.rngDraws = snap.RNGDraws
	s.table.Restore(snap.Rows, codec)
	return s, nil
}
