// Package http provides http transport for alerts
package http

import (
	stdhttp "net/http"

	"dejavu/internal/modkit/httpkit"
	"dejavu/internal/services/alerts/domain"
)

// Register mounts alert lifecycle endpoints on the given router
func Register(r httpkit.Router, p domain.LifecyclePort) {
	h := &handlers{port: p}
	httpkit.PostJSON[domain.ListInput](r, "/list", h.list)
	httpkit.PostJSON[domain.ResolveInput](r, "/merge", h.merge)
	httpkit.PostJSON[domain.ResolveInput](r, "/skip", h.skip)
}

type handlers struct{ port domain.LifecyclePort }

// @Summary List duplicate alerts for the calling owner
// @Tags Alerts
// @Accept json
// @Produce json
// @Param payload body domain.ListInput true "Filter"
// @Success 200 {array} domain.AlertDTO "ok"
// @Router /alerts/list [post]
func (h *handlers) list(r *stdhttp.Request, in domain.ListInput) (any, error) {
	owner, err := httpkit.Owner(r)
	if err != nil {
		return nil, err
	}
	rows, err := h.port.List(r.Context(), owner, domain.ListFilter{
		State: domain.State(in.State),
		Limit: in.Limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.AlertDTO, 0, len(rows))
	for _, a := range rows {
		out = append(out, domain.ToDTO(a))
	}
	return out, nil
}

// @Summary Mark an alert merged
// @Tags Alerts
// @Accept json
// @Produce json
// @Param payload body domain.ResolveInput true "Verdict"
// @Success 200 {object} domain.AlertDTO "ok"
// @Router /alerts/merge [post]
func (h *handlers) merge(r *stdhttp.Request, in domain.ResolveInput) (any, error) {
	owner, err := httpkit.Owner(r)
	if err != nil {
		return nil, err
	}
	a, err := h.port.Merge(r.Context(), owner, in.AlertID)
	if err != nil {
		return nil, err
	}
	return domain.ToDTO(a), nil
}

// @Summary Mark an alert skipped
// @Tags Alerts
// @Accept json
// @Produce json
// @Param payload body domain.ResolveInput true "Verdict"
// @Success 200 {object} domain.AlertDTO "ok"
// @Router /alerts/skip [post]
func (h *handlers) skip(r *stdhttp.Request, in domain.ResolveInput) (any, error) {
	owner, err := httpkit.Owner(r)
	if err != nil {
		return nil, err
	}
	a, err := h.port.Skip(r.Context(), owner, in.AlertID)
	if err != nil {
		return nil, err
	}
	return domain.ToDTO(a), nil
}
