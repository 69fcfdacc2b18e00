package dispatch

import (
	"fmt"
	"strings"

	"github.com/signetlabs/chase/pkg/signing"
)

// Validate checks that every recipient is sendable: an email with a
// local part and a dotted domain, and a non-empty first name. Last name
// and role are optional at this stage. The result lists every rejected
// recipient, not just the first.
func Validate(recipients []signing.Recipient) *ValidationResult {
	result := &ValidationResult{Valid: true}

	for _, r := range recipients {
		if reason := checkRecipient(r); reason != "" {
			result.Valid = false
			result.Invalid = append(result.Invalid, InvalidRecipient{
				Recipient: r,
				Reason:    reason,
			})
		}
	}

	return result
}

func checkRecipient(r signing.Recipient) string {
	at := strings.Index(r.Email, "@")
	if at <= 0 || at == len(r.Email)-1 {
		return fmt.Sprintf("invalid email: %q", r.Email)
	}
	domain := r.Email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return fmt.Sprintf("invalid email domain: %q", r.Email)
	}
	if strings.TrimSpace(r.FirstName) == "" {
		return fmt.Sprintf("missing first name for %q", r.Email)
	}
	return ""
}
