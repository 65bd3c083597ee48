// Package store defines the sink/source contract artifacts are persisted
// and rehydrated through: a table name, DDL for creation and freezing, a
// column-type schedule for bulk loading, and a row iterator. Concrete
// media (postgres, an in-memory map) live in subpackages.
package store

import "context"

// ColumnType names a bulk-load column's wire type.
type ColumnType int

const (
	ColInt64 ColumnType = iota
	ColInt16
	ColFloat32
	ColUint32
	ColTimestamp
)

// Column is one field of an Artifact's row schema, in bulk-load order.
type Column struct {
	Name string
	Type ColumnType
}

// Kind names one of the five persisted artifact families.
type Kind int

const (
	KindLookup Kind = iota
	KindMetric
	KindFuture
	KindBlueprint
	KindEpochMeta
)

func (k Kind) String() string {
	switch k {
	case KindLookup:
		return "lookup"
	case KindMetric:
		return "metric"
	case KindFuture:
		return "future"
	case KindBlueprint:
		return "blueprint"
	case KindEpochMeta:
		return "epoch_meta"
	default:
		return "unknown"
	}
}

// TableName is the artifact's persisted table name, one per street for the
// street-scoped kinds (empty street is valid for EpochMeta, which is
// global).
func (k Kind) TableName(street string) string {
	if street == "" {
		return k.String()
	}
	return k.String() + "_" + street
}

// Columns returns the bulk-load column schedule for the kind.
func (k Kind) Columns() []Column {
	switch k {
	case KindLookup:
		return []Column{{"situation_id", ColInt64}, {"bucket", ColInt64}}
	case KindMetric:
		return []Column{{"bucket_a", ColInt64}, {"bucket_b", ColInt64}, {"distance", ColFloat32}}
	case KindFuture:
		return []Column{{"bucket", ColInt64}, {"next_bucket", ColInt64}, {"weight", ColFloat32}}
	case KindBlueprint:
		return []Column{
			{"history", ColInt64}, {"present", ColInt16}, {"choices", ColInt64},
			{"edge", ColInt64}, {"weight", ColFloat32}, {"regret", ColFloat32},
			{"evalue", ColFloat32}, {"counts", ColUint32},
		}
	case KindEpochMeta:
		return []Column{{"key", ColInt64}, {"value", ColInt64}}
	default:
		return nil
	}
}

// BlueprintRow is one (Info, Edge) row of a trained Profile, matching the
// Blueprint artifact's bulk-load schema.
type BlueprintRow struct {
	History int64
	Present int16
	Choices int64
	Edge    int64
	Weight  float32
	Regret  float32
	EValue  float32
	Counts  uint32
}

// LookupRow is one situation-to-bucket assignment.
type LookupRow struct {
	SituationID int64
	Bucket      int64
}

// MetricRow is one pairwise bucket distance.
type MetricRow struct {
	BucketA, BucketB int64
	Distance         float32
}

// FutureRow is one bucket's weighted transition to a next-street bucket.
type FutureRow struct {
	Bucket, NextBucket int64
	Weight             float32
}

// Sink is the write path: ensure the table exists, bulk-load rows, freeze
// (disable autovacuum, build indices) once a street is finished, and record
// the current epoch.
type Sink interface {
	EnsureTable(ctx context.Context, kind Kind, street string) error
	WriteBlueprint(ctx context.Context, street string, rows []BlueprintRow) error
	WriteLookup(ctx context.Context, street string, rows []LookupRow) error
	WriteMetric(ctx context.Context, street string, rows []MetricRow) error
	WriteFuture(ctx context.Context, street string, rows []FutureRow) error
	Freeze(ctx context.Context, kind Kind, street string) error
	WriteEpoch(ctx context.Context, epoch int64) error
}

// Source is the read path: mirror of Sink, rehydrating in-memory artifacts
// from their persisted rows.
type Source interface {
	ReadBlueprint(ctx context.Context, street string) ([]BlueprintRow, error)
	ReadLookup(ctx context.Context, street string) ([]LookupRow, error)
	ReadMetric(ctx context.Context, street string) ([]MetricRow, error)
	ReadFuture(ctx context.Context, street string) ([]FutureRow, error)
	ReadEpoch(ctx context.Context) (int64, error)
}
