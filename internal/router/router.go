package router

import (
	"fmt"
	"net/http"
	"strings"

	"incywincy-api/internal/handler"
	"incywincy-api/internal/middleware"
	"incywincy-api/pkg/apierror"
	"incywincy-api/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler      *handler.Handler
	ToyHandler   *handler.ToyHandler
	AdminHandler *handler.AdminHandler
	Logger       zerolog.Logger
}

// Route binds a method and path pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// ToyRoutes returns the catalog route table in registration order. The
// category catch-all is last.
func ToyRoutes(h *handler.ToyHandler) []Route {
	return []Route{
		{http.MethodGet, "/", h.Root},
		{http.MethodGet, "/all_toys", h.AllToys},
		{http.MethodGet, "/all_toys/{searchText}", h.SearchToys},
		{http.MethodGet, "/view_toy/{id}", h.ViewToy},
		{http.MethodGet, "/update_toy/{id}", h.EditForm},
		{http.MethodPatch, "/update_toy/{id}", h.UpdateToy},
		{http.MethodGet, "/my_toys", h.MyToys},
		{http.MethodDelete, "/my_toys/{id}", h.DeleteToy},
		{http.MethodPost, "/add_toy", h.AddToy},
		{http.MethodGet, "/{sub_category}", h.SubCategory},
	}
}

// ValidateRoutes rejects a table in which a literal route follows a
// parameter route of the same shape it would compete with.
func ValidateRoutes(routes []Route) error {
	for i, catchAll := range routes {
		for _, later := range routes[i+1:] {
			if shadows(catchAll.Pattern, later.Pattern) {
				return fmt.Errorf("route %s %s is registered after catch-all %s", later.Method, later.Pattern, catchAll.Pattern)
			}
		}
	}
	return nil
}

// shadows reports whether pattern a, tried first, would claim paths meant
// for the more literal pattern b.
func shadows(a, b string) bool {
	as, bs := segments(a), segments(b)
	if len(as) != len(bs) {
		return false
	}
	moreLiteral := false
	for i := range as {
		aParam, bParam := isParam(as[i]), isParam(bs[i])
		switch {
		case !aParam && !bParam && as[i] != bs[i]:
			return false
		case !aParam && bParam:
			return false
		case aParam && !bParam:
			moreLiteral = true
		}
	}
	return moreLiteral
}

func segments(pattern string) []string {
	return strings.Split(strings.Trim(pattern, "/"), "/")
}

func isParam(seg string) bool {
	return strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}")
}

// New creates and configures the HTTP router. It panics if the route table
// is mis-ordered, which is a programming error.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, apierror.NotFound(""))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, apierror.MethodNotAllowed(r.Method, r.URL.Path))
	})

	// Operational routes have two or more segments, so the catch-all never sees them.
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}
		if cfg.AdminHandler != nil {
			r.Get("/admin/stats", cfg.AdminHandler.GetStats)
		}
	})

	if cfg.ToyHandler != nil {
		routes := ToyRoutes(cfg.ToyHandler)
		if err := ValidateRoutes(routes); err != nil {
			panic(err)
		}
		for _, rt := range routes {
			r.Method(rt.Method, rt.Pattern, rt.Handler)
		}
	}

	return r
}
