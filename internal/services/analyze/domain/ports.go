package domain

import "context"

// ProcessorPort runs one script revision through the full pipeline
type ProcessorPort interface {
	Process(ctx context.Context, in ProcessInput) (Report, error)
}

// RebuildPort restores index shards from the persisted corpus
type RebuildPort interface {
	// RebuildShard discards the owner's in-memory shard and rebuilds it
	// from active sketches, then verifies it
	RebuildShard(ctx context.Context, ownerID string) error

	// RebuildAll rebuilds every owner shard; used at startup and by the
	// offline reindex binary
	RebuildAll(ctx context.Context) error
}
