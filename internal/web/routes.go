package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-declutter/internal/web/handlers"
)

func (s *Server) setupRoutes(deps Deps) {
	photosHandler := handlers.NewPhotosHandler(deps.Store, deps.Analyzer, deps.Index, deps.Originals, s.jobManager)
	stateHandler := handlers.NewStateHandler(deps.Store)
	selectionHandler := handlers.NewSelectionHandler(deps.Store)
	exportHandler := handlers.NewExportHandler(deps.Store, deps.Originals, deps.Captioner)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Upload and analysis jobs
		r.Post("/photos", photosHandler.Upload)
		r.Get("/photos/jobs/{jobId}", photosHandler.JobStatus)
		r.Get("/photos/jobs/{jobId}/events", photosHandler.JobEvents)
		r.Delete("/photos/jobs/{jobId}", photosHandler.CancelJob)

		// Photo access
		r.Get("/photos/{id}/file", photosHandler.File)
		r.Get("/photos/{id}/similar", photosHandler.Similar)

		// Session state
		r.Get("/state", stateHandler.Get)

		// Selection
		r.Post("/selection/toggle", selectionHandler.Toggle)
		r.Post("/selection/group/{groupId}/select", selectionHandler.SelectGroup)
		r.Post("/selection/group/{groupId}/deselect", selectionHandler.DeselectGroup)
		r.Post("/selection/all", selectionHandler.SelectAll)
		r.Post("/selection/none", selectionHandler.DeselectAll)
		r.Post("/selection/undo", selectionHandler.Undo)
		r.Post("/selection/redo", selectionHandler.Redo)

		// Export
		r.Get("/export", exportHandler.Export)
	})
}
