package domain

import "context"

// WriterPort raises alerts; the pipeline is the only caller
type WriterPort interface {
	// Raise upserts an open alert for the pair identity. A pair that was
	// already skipped or merged stays silent; an existing open alert keeps
	// its higher score. Returns the stored alert and whether it is new
	Raise(ctx context.Context, in Upsert) (Alert, bool, error)

	// ExpireFor marks open alerts referencing the superseded script version
	// as expired when their other side is also no longer active
	ExpireFor(ctx context.Context, ownerID, scriptID string) (int, error)
}

// LifecyclePort is the operator-facing alert surface
type LifecyclePort interface {
	List(ctx context.Context, ownerID string, f ListFilter) ([]Alert, error)

	// Merge and Skip are idempotent: repeating the same verdict returns the
	// alert unchanged, while a conflicting verdict fails
	Merge(ctx context.Context, ownerID, alertID string) (Alert, error)
	Skip(ctx context.Context, ownerID, alertID string) (Alert, error)
}

// NotifierPort fans newly opened alerts out to whatever channel is wired;
// delivery is best effort and never fails the pipeline
type NotifierPort interface {
	NotifyOpened(ctx context.Context, a Alert)
}
