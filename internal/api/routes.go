package api

import (
	"net/http"

	"github.com/signetlabs/chase/internal/dispatch"
	"github.com/signetlabs/chase/internal/followup"
	"github.com/signetlabs/chase/internal/tracking"
	"github.com/signetlabs/chase/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) {
	routes.Register(
		mux,
		dispatch.NewHandler(domain.Dispatch, runtime.Logger, runtime.MaxUploadSize).Routes(),
		tracking.NewHandler(runtime.Tracker, runtime.Logger).Routes(),
		followup.NewHandler(domain.Followup, runtime.Logger).Routes(),
	)
}
