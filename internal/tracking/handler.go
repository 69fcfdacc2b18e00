package tracking

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/signetlabs/chase/pkg/handlers"
	"github.com/signetlabs/chase/pkg/routes"
)

// Handler provides HTTP endpoints for tracking queries.
type Handler struct {
	store  *Store
	logger *slog.Logger
}

// NewHandler creates a Handler over the tracking store.
func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger.With("handler", "tracking"),
	}
}

// Routes returns the route group definition for tracking endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/tracking",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/stats", Handler: h.Stats},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
		},
	}
}

// List returns tracked documents, optionally filtered by ?status=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	status := Status(r.URL.Query().Get("status"))
	switch status {
	case "", StatusPending, StatusCompleted:
	default:
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("unknown status: %s", status))
		return
	}

	entries, err := h.store.List(status)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}

	handlers.RespondJSON(w, http.StatusOK, entries)
}

// Find returns a single tracked document by provider document ID.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	entry, err := h.store.Find(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, entry)
}

// Stats returns store-wide counters.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats()
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, stats)
}
