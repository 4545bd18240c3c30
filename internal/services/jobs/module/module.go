// Package module wires the job coordinator using modkit
package module

import (
	modkit "dejavu/internal/modkit"
	"dejavu/internal/modkit/httpkit"
	adom "dejavu/internal/services/analyze/domain"
	"dejavu/internal/services/jobs/domain"
	jobsrepo "dejavu/internal/services/jobs/repo"
	jobssvc "dejavu/internal/services/jobs/service"
)

// Ports exposed by the jobs module
type Ports struct {
	Enqueuer domain.EnqueuePort
	Runner   domain.RunnerPort
}

// Wiring are the cross-module ports the coordinator depends on
type Wiring struct {
	Processor adom.ProcessorPort
	Rebuild   adom.RebuildPort
}

// Module implements the modkit.Module interface
type Module struct {
	deps  modkit.Deps
	name  string
	ports Ports
	coord *jobssvc.Coordinator
}

// New constructs the jobs module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("jobs")}, opts...)...)
	cfg := FromConfig(deps.Cfg)

	var w Wiring
	if p, ok := b.Ports.(Wiring); ok {
		w = p
	}
	if w.Processor == nil {
		panic("jobs module requires the analyze processor port")
	}

	coord := jobssvc.New(w.Processor, w.Rebuild, deps.PG, jobsrepo.NewPG(), deps.Log, jobssvc.Config{
		Capacity:    cfg.Capacity,
		Workers:     cfg.Workers,
		MaxAttempts: cfg.MaxAttempts,
		RetryBase:   cfg.RetryBase,
		JobTimeout:  cfg.JobTimeout,
	})

	m := &Module{deps: deps, name: b.Name, coord: coord}
	m.ports = Ports{Enqueuer: coord, Runner: coord}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module; the coordinator has no HTTP surface
func (m *Module) MountRoutes(r httpkit.Router) {}
