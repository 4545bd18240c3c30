// Package http provides http transport for ingest
package http

import (
	stdhttp "net/http"

	"dejavu/internal/core/normalize"
	"dejavu/internal/modkit/httpkit"
	"dejavu/internal/services/ingest/domain"
	jdom "dejavu/internal/services/jobs/domain"
)

// Register mounts ingest endpoints on the given router
func Register(r httpkit.Router, enq jdom.EnqueuePort) {
	h := &handlers{enq: enq}
	httpkit.PostJSON[domain.ChangeEvent](r, "/events", h.event)
}

type handlers struct{ enq jdom.EnqueuePort }

// @Summary Submit a committed script revision for analysis
// @Tags Ingest
// @Accept json
// @Produce json
// @Param payload body domain.ChangeEvent true "Change event"
// @Success 200 {object} domain.EnqueueReceipt "accepted"
// @Failure 429 {object} any "queue full"
// @Router /ingest/events [post]
func (h *handlers) event(r *stdhttp.Request, in domain.ChangeEvent) (any, error) {
	owner, err := httpkit.Owner(r)
	if err != nil {
		return nil, err
	}
	id, err := h.enq.Enqueue(r.Context(), jdom.Event{
		OwnerID:   owner,
		RepoID:    in.RepoID,
		Path:      in.Path,
		CommitSHA: in.CommitSHA,
		Format:    normalize.FormatTag(in.Format),
		Content:   []byte(in.Content),
	})
	if err != nil {
		return nil, err
	}
	return domain.EnqueueReceipt{JobID: id}, nil
}
