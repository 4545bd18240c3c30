// Package module implements the scripts service module
package module

import (
	"dejavu/internal/modkit"
	"dejavu/internal/modkit/httpkit"
	"dejavu/internal/services/scripts/domain"
	"dejavu/internal/services/scripts/repo"
	"dejavu/internal/services/scripts/service"
)

// Ports exposed by the scripts module
type Ports struct {
	Writer domain.WriterPort
	Reader domain.ReaderPort
}

// Module implements the scripts service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new scripts module
func New(deps modkit.Deps) *Module {
	svc := service.New(deps.PG, repo.NewPG())

	m := &Module{deps: deps}
	m.ports = Ports{
		Writer: svc,
		Reader: svc,
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "scripts" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
