// Package service provides the script corpus service implementation
package service

import (
	"context"
	"time"

	"dejavu/internal/modkit/repokit"
	perr "dejavu/internal/platform/errors"
	"dejavu/internal/services/scripts/domain"
	"dejavu/internal/services/scripts/repo"

	"github.com/google/uuid"
)

// Service implements domain.WriterPort and domain.ReaderPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
}

// New constructs a new scripts service
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage]) *Service {
	return &Service{DB: db, Binder: b}
}

// Record implements domain.WriterPort. The whole write is one transaction:
// commit replays return the existing version with Created=false, and a write
// that lands on an occupied path supersedes the prior active version
func (s *Service) Record(ctx context.Context, in domain.RecordInput) (domain.RecordResult, error) {
	if in.OwnerID == "" || in.RepoID == "" || in.Path == "" || in.CommitSHA == "" {
		return domain.RecordResult{}, perr.InvalidArgf("record requires owner, repo, path and commit")
	}

	var res domain.RecordResult
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		st := s.Binder.Bind(q)

		existing, err := st.FindByCommit(ctx, in.OwnerID, in.RepoID, in.Path, in.CommitSHA)
		if err != nil {
			return err
		}
		if existing != nil {
			res = domain.RecordResult{Version: *existing, Created: false}
			return nil
		}

		prior, err := st.FindActiveByPath(ctx, in.OwnerID, in.RepoID, in.Path)
		if err != nil {
			return err
		}

		v := domain.ScriptVersion{
			ID:          uuid.NewString(),
			OwnerID:     in.OwnerID,
			RepoID:      in.RepoID,
			Path:        in.Path,
			CommitSHA:   in.CommitSHA,
			ContentHash: in.ContentHash,
			Format:      in.Format,
			IngestedAt:  time.Now().UTC(),
		}
		if err := st.Insert(ctx, v, in.Sketch); err != nil {
			return err
		}
		if prior != nil {
			if err := st.Supersede(ctx, prior.ID, v.ID); err != nil {
				return err
			}
			sb := v.ID
			prior.SupersededBy = &sb
		}
		res = domain.RecordResult{Version: v, Prior: prior, Created: true}
		return nil
	})
	if err != nil {
		return domain.RecordResult{}, err
	}
	return res, nil
}

// Get implements domain.ReaderPort
func (s *Service) Get(ctx context.Context, id string) (domain.ScriptVersion, error) {
	var v domain.ScriptVersion
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		v, err = s.Binder.Bind(q).Get(ctx, id)
		return err
	})
	return v, err
}

// Identities implements domain.ReaderPort
func (s *Service) Identities(ctx context.Context, ownerID string, ids []string) (map[string]domain.Identity, error) {
	var out map[string]domain.Identity
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(q).Identities(ctx, ownerID, ids)
		return err
	})
	return out, err
}

// ActiveSketches implements domain.ReaderPort
func (s *Service) ActiveSketches(ctx context.Context, ownerID string) ([]domain.StoredSketch, error) {
	var out []domain.StoredSketch
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(q).ActiveSketches(ctx, ownerID)
		return err
	})
	return out, err
}

// Owners implements domain.ReaderPort
func (s *Service) Owners(ctx context.Context) ([]string, error) {
	var out []string
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(q).Owners(ctx)
		return err
	})
	return out, err
}
