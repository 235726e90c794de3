// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	collaborationfeature "github.com/dalemusser/focushub/internal/app/features/collaboration"
	healthfeature "github.com/dalemusser/focushub/internal/app/features/health"
	homefeature "github.com/dalemusser/focushub/internal/app/features/home"
	usersfeature "github.com/dalemusser/focushub/internal/app/features/users"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. FocusHub's surface is a small JSON API:
// the user document endpoints, the collaboration endpoints, a health check,
// and a root liveness banner.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// The client is a browser SPA on a different origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Root liveness banner
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Per-user document storage
	usersHandler := usersfeature.NewHandler(deps.MongoDatabase, deps.Guard, logger)
	r.Mount("/api/users", usersfeature.Routes(usersHandler))

	// Collaboration links between user documents
	collabHandler := collaborationfeature.NewHandler(deps.MongoDatabase, deps.Guard, logger)
	r.Mount("/api/collaboration", collaborationfeature.Routes(collabHandler))

	return r, nil
}
