// Package infrastructure provides core service initialization for application
// startup. It assembles the shared dependencies (logging, tracking store,
// provider client, mail, notifications, PDF, agents) the domain systems draw
// from, for both the API server and the standalone scheduler.
package infrastructure

import (
	"log/slog"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/signetlabs/chase/internal/config"
	"github.com/signetlabs/chase/internal/tracking"
	"github.com/signetlabs/chase/pkg/lifecycle"
	"github.com/signetlabs/chase/pkg/mail"
	"github.com/signetlabs/chase/pkg/pdf"
	"github.com/signetlabs/chase/pkg/signing"
	"github.com/signetlabs/chase/pkg/teams"
)

// Infrastructure holds the core systems shared by the domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Tracker   *tracking.Store
	Signing   *signing.Client
	Mailer    *mail.Mailer
	Notifier  *teams.Notifier
	PDF       *pdf.Service
	Agent     gaconfig.AgentConfig
}

// New creates an Infrastructure from the application configuration. All
// systems are initialized eagerly; none hold open connections until used.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Tracker:   tracking.NewStore(cfg.Followup.TrackerPath, logger),
		Signing:   signing.New(&cfg.Signing, logger),
		Mailer:    mail.NewMailer(&cfg.SMTP, logger),
		Notifier:  teams.NewNotifier(&cfg.Teams, logger),
		PDF:       pdf.NewService(logger),
		Agent:     cfg.Agent,
	}, nil
}
