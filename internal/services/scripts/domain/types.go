// Package domain defines the script version corpus types
package domain

import (
	"encoding/binary"
	"time"

	"dejavu/internal/core/normalize"
)

// ScriptVersion is one immutable ingested script revision. A new commit
// touching the same path creates a new ScriptVersion and points the prior
// active one at it via SupersededBy; nothing is ever deleted
type ScriptVersion struct {
	ID           string
	OwnerID      string
	RepoID       string
	Path         string
	CommitSHA    string
	ContentHash  string
	Format       normalize.FormatTag
	SupersededBy *string
	IngestedAt   time.Time
}

// Superseded reports whether a newer commit replaced this version
func (v ScriptVersion) Superseded() bool { return v.SupersededBy != nil }

// RecordInput is the write payload for one pipeline run
type RecordInput struct {
	OwnerID     string
	RepoID      string
	Path        string
	CommitSHA   string
	ContentHash string
	Format      normalize.FormatTag
	Sketch      []uint64
}

// RecordResult reports what Record did. Created is false when this exact
// (owner, repo, path, commit) was already ingested; Prior is the version this
// write superseded, when any
type RecordResult struct {
	Version ScriptVersion
	Prior   *ScriptVersion
	Created bool
}

// Identity is the slice of a version the decision engine needs. RepoID rides
// along because a path is only unique within its repository
type Identity struct {
	ID          string
	RepoID      string
	Path        string
	ContentHash string
}

// StoredSketch pairs an active script version with its persisted sketch;
// index shards are rebuilt entirely from these
type StoredSketch struct {
	ScriptID string
	Path     string
	Values   []uint64
}

// EncodeSketch packs minhash values big-endian for bytea storage
func EncodeSketch(vals []uint64) []byte {
	out := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint64(out[i*8:], v)
	}
	return out
}

// DecodeSketch is the inverse of EncodeSketch
func DecodeSketch(b []byte) []uint64 {
	out := make([]uint64, len(b)/8)
	for i := range out {
		out[i] = binary.BigEndian.Uint64(b[i*8:])
	}
	return out
}
