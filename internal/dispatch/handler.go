package dispatch

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/signetlabs/chase/pkg/handlers"
	"github.com/signetlabs/chase/pkg/pipeline"
	"github.com/signetlabs/chase/pkg/routes"
)

// Handler errors surfaced to API clients.
var (
	ErrFileTooLarge = errors.New("uploaded file exceeds size limit")
	ErrInvalidFile  = errors.New("invalid or missing file")
)

// Handler provides HTTP endpoints for document dispatch.
type Handler struct {
	rt            *Runtime
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler over the dispatch runtime.
func NewHandler(rt *Runtime, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		rt:            rt,
		logger:        logger.With("handler", "dispatch"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for dispatch endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/documents",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/send", Handler: h.Send},
		},
	}
}

// SendResponse reports the outcome of one send request.
type SendResponse struct {
	Sent       bool                  `json:"sent"`
	DocumentID string                `json:"document_id,omitempty"`
	Steps      []pipeline.StepResult `json:"steps"`
	Validation *ValidationResult     `json:"validation,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// Send accepts a multipart PDF upload and runs the full dispatch pipeline.
// Expected form fields: "file" (the PDF) and optional "document_name"
// (defaults to the file name without extension).
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize))
	if err != nil || len(raw) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	name := r.FormValue("document_name")
	if name == "" {
		name = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}
	if name == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("document name required"))
		return
	}

	result, err := Run(r.Context(), h.rt, name, raw)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	resp := SendResponse{
		Sent:       result.Sent(),
		Steps:      result.Report.Steps,
		Validation: result.State.Validation,
	}
	if result.State.Document != nil {
		resp.DocumentID = result.State.Document.ID
	}
	if result.Report.Err != nil {
		resp.Error = result.Report.Err.Error()
	}

	handlers.RespondJSON(w, sendStatus(result), resp)
}

// sendStatus maps a run outcome to an HTTP status: sent is 200, a
// validation stop is 422, and a provider or processing failure is 502.
func sendStatus(result *Result) int {
	switch {
	case result.Sent():
		return http.StatusOK
	case result.Report.Aborted:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
