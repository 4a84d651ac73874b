package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/http/auth"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/http/files"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/http/stores"
)

func New(
	filesV1 *files.Handler,
	storesV1 *stores.Handler,
	jwtSecret string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte("ok")); err != nil {
			slog.Error("failed to write health response", "error", err)
		}
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(jwtSecret))

		r.Route("/files", func(r chi.Router) {
			r.Use(middleware.AllowContentType("multipart/form-data"))
			filesV1.Routes(r)
		})

		r.Route("/stores", func(r chi.Router) {
			storesV1.Routes(r)
		})
	})

	return router
}
