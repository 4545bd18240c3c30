// Package service runs the duplicate detection pipeline end to end
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"dejavu/internal/core/decide"
	"dejavu/internal/core/fingerprint"
	"dejavu/internal/core/normalize"
	"dejavu/internal/core/simindex"
	perr "dejavu/internal/platform/errors"
	"dejavu/internal/platform/logger"
	"dejavu/internal/platform/store"
	adom "dejavu/internal/services/alerts/domain"
	"dejavu/internal/services/analyze/domain"
	sdom "dejavu/internal/services/scripts/domain"
)

// measurementsTable is the columnar sink table for candidate comparisons
const measurementsTable = "similarity_measurements"

// compactThreshold is how many hidden ids a shard accumulates before a
// background compaction pass reclaims them
const compactThreshold = 64

// Service implements domain.ProcessorPort and domain.RebuildPort
type Service struct {
	Norm    *normalize.Normalizer
	Extract *fingerprint.Extractor
	Idx     *simindex.Index
	Engine  *decide.Engine

	Scripts struct {
		Writer sdom.WriterPort
		Reader sdom.ReaderPort
	}
	Alerts adom.WriterPort

	Sink store.Clickhouse // optional
	Log  logger.Logger
}

// New constructs the pipeline service
func New(
	norm *normalize.Normalizer,
	ex *fingerprint.Extractor,
	idx *simindex.Index,
	eng *decide.Engine,
	scriptsW sdom.WriterPort,
	scriptsR sdom.ReaderPort,
	alerts adom.WriterPort,
	sink store.Clickhouse,
	log logger.Logger,
) *Service {
	s := &Service{
		Norm:    norm,
		Extract: ex,
		Idx:     idx,
		Engine:  eng,
		Alerts:  alerts,
		Sink:    sink,
		Log:     log.With().Str("component", "analyze").Logger(),
	}
	s.Scripts.Writer = scriptsW
	s.Scripts.Reader = scriptsR
	return s
}

// Process implements domain.ProcessorPort. Malformed input surfaces as a
// malformed script error and must not be retried; everything downstream of
// normalization operates on the fingerprint only
func (s *Service) Process(ctx context.Context, in domain.ProcessInput) (domain.Report, error) {
	if in.OwnerID == "" {
		return domain.Report{}, perr.InvalidArgf("process requires an owner")
	}

	doc, err := s.Norm.Normalize(string(in.Content), in.Format)
	if err != nil {
		return domain.Report{}, err
	}
	sk, err := s.Extract.Sketch(doc)
	if err != nil {
		return domain.Report{}, err
	}

	sum := sha256.Sum256(in.Content)
	contentHash := hex.EncodeToString(sum[:])

	rec, err := s.Scripts.Writer.Record(ctx, sdom.RecordInput{
		OwnerID:     in.OwnerID,
		RepoID:      in.RepoID,
		Path:        in.Path,
		CommitSHA:   in.CommitSHA,
		ContentHash: contentHash,
		Format:      in.Format,
		Sketch:      sk.Values,
	})
	if err != nil {
		return domain.Report{}, err
	}
	if !rec.Created {
		return domain.Report{ScriptID: rec.Version.ID, Replayed: true}, nil
	}

	shard := s.Idx.Shard(in.OwnerID)
	if rec.Prior != nil {
		shard.MarkSuperseded(rec.Prior.ID)
		if _, err := s.Alerts.ExpireFor(ctx, in.OwnerID, rec.Prior.ID); err != nil {
			s.Log.Warn().Err(err).Str("script_id", rec.Prior.ID).Msg("expire pass failed")
		}
		if shard.Superseded() >= compactThreshold {
			go shard.Compact()
		}
	}

	cands := shard.Candidates(sk, rec.Version.ID)
	report := domain.Report{ScriptID: rec.Version.ID, Candidates: len(cands)}
	if err := shard.Insert(rec.Version.ID, sk); err != nil {
		return report, err
	}
	if len(cands) == 0 {
		return report, nil
	}

	ids := make([]string, 0, len(cands))
	for _, c := range cands {
		ids = append(ids, c.ID)
	}
	idents, err := s.Scripts.Reader.Identities(ctx, in.OwnerID, ids)
	if err != nil {
		return report, err
	}

	dcands := make([]decide.Candidate, 0, len(cands))
	for _, c := range cands {
		ident, ok := idents[c.ID]
		if !ok {
			// Index points at a version the corpus does not know
			return report, perr.IndexCorruptf("candidate %s missing from corpus", c.ID)
		}
		dcands = append(dcands, decide.Candidate{ID: c.ID, RepoID: ident.RepoID, Path: ident.Path, Score: c.Score})
	}

	decisions := s.Engine.Decide(
		decide.Subject{ID: rec.Version.ID, RepoID: in.RepoID, Path: in.Path},
		dcands,
	)
	for _, d := range decisions {
		ident := idents[d.CandidateID]
		_, created, err := s.Alerts.Raise(ctx, adom.Upsert{
			OwnerID:     in.OwnerID,
			SubjectID:   d.SubjectID,
			CandidateID: d.CandidateID,
			SubjectKey:  adom.PairSide{RepoID: in.RepoID, Path: in.Path, ContentHash: contentHash},
			Candidate:   adom.PairSide{RepoID: ident.RepoID, Path: ident.Path, ContentHash: ident.ContentHash},
			Score:       d.Score,
			Tier:        adom.Tier(d.Tier),
			SubjectOps:  doc.Profile.Summary(),
		})
		if err != nil {
			return report, err
		}
		if created {
			report.AlertsRaised++
		}
	}

	s.ship(ctx, in.OwnerID, rec.Version.ID, decisions)
	return report, nil
}

// ship writes candidate measurements to the columnar sink; best effort
func (s *Service) ship(ctx context.Context, ownerID, subjectID string, ds []decide.Decision) {
	if s.Sink == nil || len(ds) == 0 {
		return
	}
	rows := make([][]any, 0, len(ds))
	for _, d := range ds {
		m := domain.Measurement{
			OwnerID:     ownerID,
			SubjectID:   subjectID,
			CandidateID: d.CandidateID,
			Score:       d.Score,
			Tier:        string(d.Tier),
		}
		rows = append(rows, m.Row())
	}
	if err := s.Sink.Insert(ctx, measurementsTable, rows); err != nil {
		s.Log.Warn().Err(err).Msg("measurement sink write failed")
	}
}

// RebuildShard implements domain.RebuildPort
func (s *Service) RebuildShard(ctx context.Context, ownerID string) error {
	sks, err := s.Scripts.Reader.ActiveSketches(ctx, ownerID)
	if err != nil {
		return err
	}

	s.Idx.Drop(ownerID)
	shard := s.Idx.Shard(ownerID)
	for _, st := range sks {
		if err := shard.Insert(st.ScriptID, fingerprint.Sketch{Values: st.Values}); err != nil {
			return err
		}
	}
	if err := shard.Check(); err != nil {
		return err
	}
	s.Log.Info().Str("owner_id", ownerID).Int("scripts", shard.Len()).Msg("shard rebuilt")
	return nil
}

// RebuildAll implements domain.RebuildPort
func (s *Service) RebuildAll(ctx context.Context) error {
	owners, err := s.Scripts.Reader.Owners(ctx)
	if err != nil {
		return err
	}
	for _, o := range owners {
		if err := s.RebuildShard(ctx, o); err != nil {
			return err
		}
	}
	return nil
}
