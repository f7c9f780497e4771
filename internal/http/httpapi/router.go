package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"themegen/internal/http/handlers"
	"themegen/internal/middleware"
)

// Options configures the transport around the handlers.
type Options struct {
	CORS            middleware.CORSOptions
	RateLimitPerMin int
}

// NewRouter wires the routes. The CORS shim runs before routing so preflight
// is answered for every path without touching rate limiting or the gate.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.CORS(opts.CORS),
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(app.Logger),
		chimw.Recoverer,
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/catalog", app.ListCatalog)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
		r.Post("/build_package", app.BuildPackage)
		r.Post("/convert_image", app.ConvertImage)
	})

	r.Route("/builds", func(r chi.Router) {
		r.Get("/", app.ListBuilds)
		r.Get("/{id}", app.GetBuild)
		r.Get("/{id}/archive", app.BuildArchive)
	})

	return r
}
