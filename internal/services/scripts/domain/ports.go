package domain

import "context"

// WriterPort records script versions with supersession semantics
type WriterPort interface {
	Record(ctx context.Context, in RecordInput) (RecordResult, error)
}

// ReaderPort exposes the corpus reads the engine and rebuild path need
type ReaderPort interface {
	Get(ctx context.Context, id string) (ScriptVersion, error)

	// Identities resolves candidate ids to (path, content hash) within one
	// owner's corpus; unknown ids are simply absent from the result
	Identities(ctx context.Context, ownerID string, ids []string) (map[string]Identity, error)

	// ActiveSketches returns every non-superseded sketch for an owner,
	// sufficient to rebuild that owner's index shard from scratch
	ActiveSketches(ctx context.Context, ownerID string) ([]StoredSketch, error)

	// Owners lists every owner with at least one active script version
	Owners(ctx context.Context) ([]string, error)
}
