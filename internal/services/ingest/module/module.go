// Package module wires ingest into the API using modkit
package module

import (
	"net/http"

	modkit "dejavu/internal/modkit"
	"dejavu/internal/modkit/httpkit"
	str "dejavu/internal/platform/strings"
	ingesthttp "dejavu/internal/services/ingest/http"
	jdom "dejavu/internal/services/jobs/domain"
)

// Wiring are the cross-module ports ingest depends on
type Wiring struct {
	Enqueuer jdom.EnqueuePort
}

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws      []func(http.Handler) http.Handler
	register func(httpkit.Router)

	enq jdom.EnqueuePort
}

// New constructs the ingest module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("ingest"), modkit.WithPrefix("/ingest")}, opts...)...)

	var w Wiring
	if p, ok := b.Ports.(Wiring); ok {
		w = p
	}
	if w.Enqueuer == nil {
		panic("ingest module requires the jobs enqueuer port")
	}

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		enq:    w.Enqueuer,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		ingesthttp.Register(r, m.enq)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports returns the module ports; ingest only consumes
func (m *Module) Ports() any { return nil }
