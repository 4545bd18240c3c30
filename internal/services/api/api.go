// Package api provides the HTTP API for the application
package api

import (
	"dejavu/internal/platform/config"
	"dejavu/internal/platform/logger"
	phttp "dejavu/internal/platform/net/http"
	"dejavu/internal/platform/store"

	"dejavu/internal/modkit"
	"dejavu/internal/modkit/httpkit"
	"dejavu/internal/modkit/module"
	"dejavu/internal/modkit/swaggerkit"

	metamod "dejavu/internal/services/api/meta/module"

	alertsmod "dejavu/internal/services/alerts/module"
	analyzemod "dejavu/internal/services/analyze/module"
	ingestmod "dejavu/internal/services/ingest/module"
	jobsmod "dejavu/internal/services/jobs/module"
	scriptsmod "dejavu/internal/services/scripts/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Wired are the composed module ports the binary needs beyond HTTP: the
// coordinator runner and the shard rebuilder for startup recovery
type Wired struct {
	Jobs    jobsmod.Ports
	Analyze analyzemod.Ports
}

// Mount mounts the API service onto the given router and returns the wired
// worker ports
func Mount(r phttp.Router, opt Options) Wired {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	// corpus first; everything downstream hangs off its ports
	scripts := scriptsmod.New(deps)
	sp := module.MustPortsOf[scriptsmod.Ports](scripts)

	alerts := alertsmod.New(deps)
	ap := module.MustPortsOf[alertsmod.Ports](alerts)

	// pipeline gets the corpus and the alert writer
	analyze := analyzemod.New(deps, modkit.WithPorts(analyzemod.Wiring{
		ScriptsWriter: sp.Writer,
		ScriptsReader: sp.Reader,
		Alerts:        ap.Writer,
	}))
	anp := module.MustPortsOf[analyzemod.Ports](analyze)

	// coordinator drives the pipeline; ingest feeds the coordinator
	jobs := jobsmod.New(deps, modkit.WithPorts(jobsmod.Wiring{
		Processor: anp.Processor,
		Rebuild:   anp.Rebuild,
	}))
	jp := module.MustPortsOf[jobsmod.Ports](jobs)

	ingest := ingestmod.New(deps, modkit.WithPorts(ingestmod.Wiring{
		Enqueuer: jp.Enqueuer,
	}))

	mods := []module.Module{
		metamod.New(deps),
		scripts,
		alerts,
		analyze,
		jobs,
		ingest,
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})

	return Wired{Jobs: jp, Analyze: anp}
}
