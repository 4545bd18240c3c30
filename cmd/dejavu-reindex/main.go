// dejavu-reindex rebuilds every owner's similarity shard from the persisted
// corpus and verifies the result. Run it to validate sketches after a
// migration or when corruption is suspected; the API rebuilds its own shards
// at boot the same way
package main

import (
	"context"
	"flag"

	"dejavu/internal/core/fingerprint"
	"dejavu/internal/core/simindex"
	"dejavu/internal/platform/config"
	"dejavu/internal/platform/logger"
	"dejavu/internal/platform/store"

	analyzemod "dejavu/internal/services/analyze/module"
	scriptsrepo "dejavu/internal/services/scripts/repo"
	scriptssvc "dejavu/internal/services/scripts/service"
)

func main() {
	var owner string
	flag.StringVar(&owner, "owner", "", "rebuild a single owner's shard (default: all)")
	flag.Parse()

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	l := logger.Get()

	ctx := context.Background()
	st, err := store.Open(ctx, store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() { _ = st.Close(ctx) }()

	eng := analyzemod.FromConfig(root)
	ex, err := fingerprint.New(fingerprint.Params{
		ShingleK: eng.ShingleK,
		Hashes:   eng.Hashes,
		Bands:    eng.Bands,
		Rows:     eng.Rows,
	})
	if err != nil {
		l.Panic().Err(err).Msg("bad engine params")
	}

	scripts := scriptssvc.New(st.PG, scriptsrepo.NewPG())
	idx := simindex.New(ex)

	owners := []string{owner}
	if owner == "" {
		owners, err = scripts.Owners(ctx)
		if err != nil {
			l.Panic().Err(err).Msg("listing owners failed")
		}
	}

	for _, o := range owners {
		sks, err := scripts.ActiveSketches(ctx, o)
		if err != nil {
			l.Panic().Err(err).Str("owner_id", o).Msg("loading sketches failed")
		}
		shard := idx.Shard(o)
		for _, sk := range sks {
			if err := shard.Insert(sk.ScriptID, fingerprint.Sketch{Values: sk.Values}); err != nil {
				l.Panic().Err(err).Str("owner_id", o).Str("script_id", sk.ScriptID).Msg("persisted sketch rejected")
			}
		}
		if err := shard.Check(); err != nil {
			l.Panic().Err(err).Str("owner_id", o).Msg("shard failed verification")
		}
		l.Info().Str("owner_id", o).Int("scripts", shard.Len()).Msg("shard verified")
	}
	l.Info().Int("owners", len(owners)).Msg("reindex complete")
}
