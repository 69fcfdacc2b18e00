package followup

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/signetlabs/chase/pkg/handlers"
	"github.com/signetlabs/chase/pkg/routes"
)

// Handler provides HTTP endpoints for follow-up operations.
type Handler struct {
	rt     *Runtime
	logger *slog.Logger
}

// NewHandler creates a Handler over the follow-up runtime.
func NewHandler(rt *Runtime, logger *slog.Logger) *Handler {
	return &Handler{
		rt:     rt,
		logger: logger.With("handler", "followup"),
	}
}

// Routes returns the route group definition for follow-up endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/followups",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/run", Handler: h.Run},
		},
	}
}

// Run triggers one follow-up pass immediately, outside the daily schedule.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	summary, err := Run(r.Context(), h.rt, time.Now())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	if summary.Outcomes == nil {
		summary.Outcomes = []Outcome{}
	}

	handlers.RespondJSON(w, http.StatusOK, summary)
}
