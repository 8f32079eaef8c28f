package http

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h PredictionHandler, timeout time.Duration) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/healthz", h.Health)

	r.Get("/", h.Index)
	r.Route("/prediction", func(r chi.Router) {
		r.Get("/", h.Page)
		r.Get("/chart", h.Chart)
		r.Get("/xlsx", h.DownloadXLSX)
		r.Get("/csv", h.DownloadCSV)
		r.Get("/pdf", h.DownloadPDF)
	})
	r.Post("/api/prediction", h.Predict)
	r.Post("/api/prediction/async", h.PredictAsync)

	return r
}
