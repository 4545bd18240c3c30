package httpkit

import (
	"compress/flate"
	"net/http"

	"dejavu/internal/modkit/scope"
	pnet "dejavu/internal/platform/net"
	phttp "dejavu/internal/platform/net/http"
	"dejavu/internal/platform/net/middleware"
)

// CommonStack returns a baseline per module middleware slice
// compose with your auth or tenancy middleware as needed in main
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID(),
		middleware.RealIP(),

		// safety
		middleware.RecoverJSON,

		// cache / freshness
		middleware.NoCache(),

		// observability
		middleware.Logger(),

		// cross-origin (tweak config in main if needed)
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.RedirectSlashes(),
		middleware.StripSlashes(),
		middleware.Timeout(30 * 1e9), // 30s
	}
}

// Auth wires the auth middleware to the platform JSON writer and copies the
// authenticated identity onto the generic scope so layers below HTTP (job
// audit, service logs) can read it without net helpers
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	// middleware expects write func(w http.ResponseWriter, status int, body any)
	// use phttp.JSON which matches that signature
	authed := middleware.Auth(p, phttp.JSON)
	return func(next http.Handler) http.Handler {
		return authed(scopeIdentity(next))
	}
}

// scopeIdentity mirrors the request identity into scope values
func scopeIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		kv := map[string]string{}
		if uid := pnet.UserID(ctx); uid != "" {
			kv["user_id"] = uid
		}
		if tid := pnet.OwnerID(ctx); tid != "" {
			kv["owner_id"] = tid
		}
		if len(kv) > 0 {
			r = r.WithContext(scope.With(ctx, kv))
		}
		next.ServeHTTP(w, r)
	})
}
