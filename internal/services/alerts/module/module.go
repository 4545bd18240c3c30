// Package module wires alerts into the API using modkit
package module

import (
	"net/http"

	modkit "dejavu/internal/modkit"
	"dejavu/internal/modkit/httpkit"
	str "dejavu/internal/platform/strings"
	"dejavu/internal/services/alerts/domain"
	alertshttp "dejavu/internal/services/alerts/http"
	"dejavu/internal/services/alerts/notify"
	alertsrepo "dejavu/internal/services/alerts/repo"
	alertssvc "dejavu/internal/services/alerts/service"
)

// Ports exposed by the alerts module
type Ports struct {
	Writer    domain.WriterPort
	Lifecycle domain.LifecyclePort
}

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     Ports
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc *alertssvc.Service
}

// New constructs an alerts module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("alerts"), modkit.WithPrefix("/alerts")}, opts...)...)
	cfg := FromConfig(deps.Cfg)

	svc := alertssvc.New(deps.PG, alertsrepo.NewPG(), notify.NewLog(deps.Log), alertssvc.Config{
		HardLimit: cfg.HardLimit,
	})

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{Writer: svc, Lifecycle: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		alertshttp.Register(r, m.svc)
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
		if m.subrouter != nil {
			rr = m.subrouter(rr)
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

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
