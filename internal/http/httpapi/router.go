package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"studio/internal/http/handlers"
	"studio/internal/infra"
	"studio/internal/middleware"
)

// Options carries the router's middleware configuration.
type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	Locales        *middleware.Locales
	RegionLookup   middleware.RegionLookup
	RateLimit      int
	Logger         infra.Logger
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	locales := opts.Locales
	if locales == nil {
		locales = middleware.NewLocales(nil, "en")
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.RateLimit(opts.RateLimit, time.Minute),
		middleware.I18N(locales, opts.RegionLookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Group(func(r chi.Router) {
		r.Use(
			middleware.AuthJWT(opts.JWTSecret),
			middleware.RequireRole(middleware.RoleTeacher, middleware.RoleAdmin),
		)

		r.Route("/v1/uploads", func(r chi.Router) {
			r.Post("/", app.CreateUpload)
			r.Get("/status", app.UploadStatus)
		})

		r.Route("/v1/classes", func(r chi.Router) {
			r.Get("/", app.ListClasses)
			r.Post("/", app.CreateClass)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", app.GetClass)
				r.Put("/", app.UpdateClass)
				r.Delete("/", app.DeleteClass)
				r.Delete("/video", app.RemoveClassVideo)
			})
		})

		r.Route("/v1/courses", func(r chi.Router) {
			r.Get("/", app.ListCourses)
			r.Post("/", app.CreateCourse)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", app.GetCourse)
				r.Put("/", app.UpdateCourse)
				r.Delete("/", app.DeleteCourse)
				r.Put("/classes", app.SetCourseClasses)
			})
		})
	})

	return r
}
