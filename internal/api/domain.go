package api

import (
	"github.com/signetlabs/chase/internal/agents"
	"github.com/signetlabs/chase/internal/dispatch"
	"github.com/signetlabs/chase/internal/followup"
)

// Domain holds the domain runtimes that comprise the API.
type Domain struct {
	Dispatch *dispatch.Runtime
	Followup *followup.Runtime
}

// NewDomain assembles the domain runtimes from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	dispatchRT := &dispatch.Runtime{
		PDF:     runtime.PDF,
		Source:  agents.NewExtractor(runtime.Agent, runtime.Logger),
		Analyst: agents.NewAnalyst(runtime.Agent, runtime.Logger),
		Signing: runtime.Signing,
		Tracker: runtime.Tracker,
		Logger:  runtime.Logger,
	}

	followupRT := &followup.Runtime{
		Tracker:   runtime.Tracker,
		Signing:   runtime.Signing,
		Drafter:   agents.NewDrafter(runtime.Agent, runtime.Logger),
		Mailer:    runtime.Mailer,
		Notifier:  runtime.Notifier,
		Logger:    runtime.Logger,
		Threshold: runtime.Followup.ThresholdDuration(),
		Link:      runtime.Signing.Link,
	}

	return &Domain{
		Dispatch: dispatchRT,
		Followup: followupRT,
	}
}
