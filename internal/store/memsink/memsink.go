// Package memsink is an in-memory Sink/Source, used by the driver's fast
// mode and by tests in place of a real database. Grounded on
// sdk/solver/blueprint.go's Save/LoadBlueprint JSON round-trip: the same
// "encode the whole artifact, decode it back" shape, over a map instead of
// a file, plus an optional on-disk snapshot for the same durability a
// blueprint file gives a runtime bot.
package memsink

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/lox/cfrsolver/internal/store"
)

// Sink is a concurrency-safe in-memory implementation of store.Sink and
// store.Source.
type Sink struct {
	mu         sync.RWMutex
	blueprints map[string][]store.BlueprintRow
	lookups    map[string][]store.LookupRow
	metrics    map[string][]store.MetricRow
	futures    map[string][]store.FutureRow
	frozen     map[string]bool
	epoch      int64
}

// New returns an empty in-memory Sink.
func New() *Sink {
	return &Sink{
		blueprints: make(map[string][]store.BlueprintRow),
		lookups:    make(map[string][]store.LookupRow),
		metrics:    make(map[string][]store.MetricRow),
		futures:    make(map[string][]store.FutureRow),
		frozen:     make(map[string]bool),
	}
}

func (s *Sink) EnsureTable(ctx context.Context, kind store.Kind, street string) error {
	return nil
}

func (s *Sink) WriteBlueprint(ctx context.Context, street string, rows []store.BlueprintRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blueprints[street] = append(s.blueprints[street], rows...)
	return nil
}

func (s *Sink) WriteLookup(ctx context.Context, street string, rows []store.LookupRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups[street] = append(s.lookups[street], rows...)
	return nil
}

func (s *Sink) WriteMetric(ctx context.Context, street string, rows []store.MetricRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics[street] = append(s.metrics[street], rows...)
	return nil
}

func (s *Sink) WriteFuture(ctx context.Context, street string, rows []store.FutureRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.futures[street] = append(s.futures[street], rows...)
	return nil
}

func (s *Sink) Freeze(ctx context.Context, kind store.Kind, street string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen[kind.TableName(street)] = true
	return nil
}

func (s *Sink) WriteEpoch(ctx context.Context, epoch int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch = epoch
	return nil
}

func (s *Sink) ReadBlueprint(ctx context.Context, street string) ([]store.BlueprintRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]store.BlueprintRow(nil), s.blueprints[street]...), nil
}

func (s *Sink) ReadLookup(ctx context.Context, street string) ([]store.LookupRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]store.LookupRow(nil), s.lookups[street]...), nil
}

func (s *Sink) ReadMetric(ctx context.Context, street string) ([]store.MetricRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]store.MetricRow(nil), s.metrics[street]...), nil
}

func (s *Sink) ReadFuture(ctx context.Context, street string) ([]store.FutureRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]store.FutureRow(nil), s.futures[street]...), nil
}

func (s *Sink) ReadEpoch(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch, nil
}

// snapshot is the on-disk wire form, mirroring Blueprint's
// version+payload shape.
type snapshot struct {
	Version    int                           `json:"version"`
	Epoch      int64                         `json:"epoch"`
	Blueprints map[string][]store.BlueprintRow `json:"blueprints"`
	Lookups    map[string][]store.LookupRow    `json:"lookups"`
	Metrics    map[string][]store.MetricRow    `json:"metrics"`
	Futures    map[string][]store.FutureRow    `json:"futures"`
}

const snapshotVersion = 1

// SaveFile persists the whole in-memory store as JSON, for the same
// load-and-resume workflow a blueprint file gives a runtime bot.
func (s *Sink) SaveFile(path string) error {
	s.mu.RLock()
	snap := snapshot{
		Version:    snapshotVersion,
		Epoch:      s.epoch,
		Blueprints: s.blueprints,
		Lookups:    s.lookups,
		Metrics:    s.metrics,
		Futures:    s.futures,
	}
	s.mu.RUnlock()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// LoadFile hydrates a Sink from a file written by SaveFile.
func LoadFile(path string) (*Sink, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var snap snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, err
	}

	s := New()
	s.epoch = snap.Epoch
	if snap.Blueprints != nil {
		s.blueprints = snap.Blueprints
	}
	if snap.Lookups != nil {
		s.lookups = snap.Lookups
	}
	if snap.Metrics != nil {
		s.metrics = snap.Metrics
	}
	if snap.Futures != nil {
		s.futures = snap.Futures
	}
	return s, nil
}
