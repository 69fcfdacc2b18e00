// Package dispatch implements the send pipeline: extract recipients from a
// PDF, validate them, place signature fields, upload to the e-signature
// provider, and send, recording one tracking entry per successful send.
package dispatch

import (
	"github.com/signetlabs/chase/internal/agents"
	"github.com/signetlabs/chase/pkg/signing"
)

// State accumulates across pipeline steps. Steps only add to it; earlier
// values are never rewritten, so a failure report can show everything the
// run produced before stopping.
type State struct {
	DocumentName string
	RawInput     []byte

	// extract
	DocumentText string
	PageCount    int
	Recipients   []signing.Recipient

	// validate
	Validation *ValidationResult

	// prepare
	Layout  *agents.PageLayout
	Stamped []byte

	// upload
	Document *signing.Document

	// send
	Sent bool
}

// ValidationResult reports per-recipient validation outcomes.
type ValidationResult struct {
	Valid   bool               `json:"valid"`
	Invalid []InvalidRecipient `json:"invalid,omitempty"`
}

// InvalidRecipient pairs a rejected recipient with the reason.
type InvalidRecipient struct {
	Recipient signing.Recipient `json:"recipient"`
	Reason    string            `json:"reason"`
}
