package attendancehttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers attendance endpoints onto the router. Export
// routes carry a tighter rate limit because each one drives a headless
// Chromium render.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/attendance", h.handleDashboard)
	r.Get("/attendance/me", h.handleEmployee)
	r.Get("/attendance/status/today", h.handleTodayStatus)
	r.Post("/attendance/checkin", h.handleCheckIn)
	r.Post("/attendance/checkout", h.handleCheckOut)
	r.Post("/attendance/snapshot", h.handleSnapshot)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/attendance/pdf", h.handleGridPDF)
		gr.Get("/attendance/export.csv", h.handleGridCSV)
		gr.Get("/attendance/me/pdf", h.handleEmployeePDF)
	})
}
