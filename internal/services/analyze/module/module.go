// Package module wires the analysis pipeline using modkit
package module

import (
	"dejavu/internal/core/decide"
	"dejavu/internal/core/fingerprint"
	"dejavu/internal/core/normalize"
	"dejavu/internal/core/simindex"
	modkit "dejavu/internal/modkit"
	"dejavu/internal/modkit/httpkit"
	adom "dejavu/internal/services/alerts/domain"
	"dejavu/internal/services/analyze/domain"
	asvc "dejavu/internal/services/analyze/service"
	sdom "dejavu/internal/services/scripts/domain"
)

// Ports declares what the analyze module exposes and what it needs injected
type Ports struct {
	Processor domain.ProcessorPort
	Rebuild   domain.RebuildPort
}

// Wiring are the cross-module ports analyze depends on
type Wiring struct {
	ScriptsWriter sdom.WriterPort
	ScriptsReader sdom.ReaderPort
	Alerts        adom.WriterPort
}

// Module implements the modkit.Module interface
type Module struct {
	deps  modkit.Deps
	name  string
	ports Ports
	svc   *asvc.Service
}

// New constructs the analyze module. Sketch geometry is config-driven and
// must satisfy bands*rows == hashes or construction panics at boot
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("analyze")}, opts...)...)
	cfg := FromConfig(deps.Cfg)

	var w Wiring
	if p, ok := b.Ports.(Wiring); ok {
		w = p
	}
	if w.ScriptsWriter == nil || w.ScriptsReader == nil || w.Alerts == nil {
		panic("analyze module requires scripts and alerts ports")
	}

	ex, err := fingerprint.New(fingerprint.Params{
		ShingleK: cfg.ShingleK,
		Hashes:   cfg.Hashes,
		Bands:    cfg.Bands,
		Rows:     cfg.Rows,
	})
	if err != nil {
		panic(err)
	}

	svc := asvc.New(
		normalize.New(normalize.Limits{MaxBytes: cfg.MaxScriptBytes}),
		ex,
		simindex.New(ex),
		decide.New(decide.Thresholds{Likely: cfg.Likely, Similar: cfg.Similar}),
		w.ScriptsWriter,
		w.ScriptsReader,
		w.Alerts,
		deps.CH,
		deps.Log,
	)

	m := &Module{deps: deps, name: b.Name, svc: svc}
	m.ports = Ports{Processor: svc, Rebuild: svc}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module; analyze has no HTTP surface
func (m *Module) MountRoutes(r httpkit.Router) {}
