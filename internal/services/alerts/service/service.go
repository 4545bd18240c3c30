// Package service provides the duplicate alert service implementation
package service

import (
	"context"
	"time"

	"dejavu/internal/modkit/repokit"
	perr "dejavu/internal/platform/errors"
	ptime "dejavu/internal/platform/time"
	"dejavu/internal/services/alerts/domain"
	"dejavu/internal/services/alerts/repo"

	"github.com/google/uuid"
)

// Config for the alerts service
type Config struct {
	// HardLimit caps List page sizes; defaults to 200 if <=0
	HardLimit int
}

// Service implements domain.WriterPort and domain.LifecyclePort
type Service struct {
	DB       repokit.TxRunner
	Binder   repokit.Binder[repo.Storage]
	Notifier domain.NotifierPort
	Cfg      Config
}

// New constructs a new alerts service; notifier may be nil
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], n domain.NotifierPort, cfg Config) *Service {
	if cfg.HardLimit <= 0 {
		cfg.HardLimit = 200
	}
	return &Service{DB: db, Binder: b, Notifier: n, Cfg: cfg}
}

// Raise implements domain.WriterPort. A pair identity already resolved as
// merged or skipped stays silent forever; an open alert for the same pair
// keeps the higher score of the two sightings
func (s *Service) Raise(ctx context.Context, in domain.Upsert) (domain.Alert, bool, error) {
	if in.OwnerID == "" || in.SubjectID == "" || in.CandidateID == "" {
		return domain.Alert{}, false, perr.InvalidArgf("raise requires owner and both script ids")
	}

	key := domain.PairKey(in.SubjectKey, in.Candidate)
	var out domain.Alert
	var created bool
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		st := s.Binder.Bind(q)

		now := time.Now().UTC()
		fresh := domain.Alert{
			ID:          uuid.NewString(),
			OwnerID:     in.OwnerID,
			PairKey:     key,
			SubjectID:   in.SubjectID,
			CandidateID: in.CandidateID,
			Score:       in.Score,
			Tier:        in.Tier,
			State:       domain.StateOpen,
			Description: domain.Describe(in),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		inserted, err := st.Insert(ctx, fresh)
		if err != nil {
			return err
		}
		if inserted {
			out, created = fresh, true
			return nil
		}

		existing, err := st.FindByPairKey(ctx, in.OwnerID, key)
		if err != nil {
			return err
		}
		if existing == nil {
			return perr.IndexCorruptf("alert upsert for pair %s found no row after conflict", key)
		}
		if existing.State == domain.StateOpen && in.Score > existing.Score {
			if err := st.BumpScore(ctx, existing.ID, in.Score, in.Tier); err != nil {
				return err
			}
			existing.Score = in.Score
			existing.Tier = in.Tier
		}
		out = *existing
		return nil
	})
	if err != nil {
		return domain.Alert{}, false, err
	}
	if created && s.Notifier != nil {
		s.Notifier.NotifyOpened(ctx, out)
	}
	return out, created, nil
}

// ExpireFor implements domain.WriterPort
func (s *Service) ExpireFor(ctx context.Context, ownerID, scriptID string) (int, error) {
	var n int
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		n, err = s.Binder.Bind(q).ExpireSuperseded(ctx, ownerID, scriptID)
		return err
	})
	return n, err
}

// List implements domain.LifecyclePort
func (s *Service) List(ctx context.Context, ownerID string, f domain.ListFilter) ([]domain.Alert, error) {
	if ownerID == "" {
		return nil, perr.InvalidArgf("list requires an owner")
	}
	if f.Limit <= 0 || f.Limit > s.Cfg.HardLimit {
		f.Limit = s.Cfg.HardLimit
	}
	var out []domain.Alert
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(q).List(ctx, ownerID, f)
		return err
	})
	return out, err
}

// Merge implements domain.LifecyclePort
func (s *Service) Merge(ctx context.Context, ownerID, alertID string) (domain.Alert, error) {
	return s.resolve(ctx, ownerID, alertID, domain.StateMerged)
}

// Skip implements domain.LifecyclePort
func (s *Service) Skip(ctx context.Context, ownerID, alertID string) (domain.Alert, error) {
	return s.resolve(ctx, ownerID, alertID, domain.StateSkipped)
}

func (s *Service) resolve(ctx context.Context, ownerID, alertID string, verdict domain.State) (domain.Alert, error) {
	var out domain.Alert
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		st := s.Binder.Bind(q)

		a, err := st.Get(ctx, alertID)
		if err != nil {
			return err
		}
		if a.OwnerID != ownerID {
			return perr.Forbiddenf("alert %s does not belong to this owner", alertID)
		}
		if a.State == verdict {
			out = a // repeating the same verdict is a no-op
			return nil
		}
		if a.State.Terminal() {
			return perr.Conflictf("alert %s already resolved as %s", alertID, a.State)
		}
		if err := st.SetState(ctx, alertID, verdict); err != nil {
			return err
		}
		a.State = verdict
		a.ResolvedAt = ptime.Ptr(time.Now().UTC())
		out = a
		return nil
	})
	if err != nil {
		return domain.Alert{}, err
	}
	return out, nil
}
