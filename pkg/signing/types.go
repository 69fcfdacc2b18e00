// Package signing provides the e-signature provider client used to upload
// documents, place signature fields, send for signature, and poll status.
package signing

import "strings"

// Recipient roles accepted by the provider. Roles must be unique per
// document; additional recipients beyond the three standard roles receive
// numbered CC roles ("CC 2", "CC 3", ...).
const (
	RoleSigner   = "Signer"
	RoleApprover = "Approver"
	RoleCC       = "CC"
)

// Provider document lifecycle statuses.
const (
	StatusUploaded   = "document.uploaded"
	StatusProcessing = "document.processing"
	StatusDraft      = "document.draft"
	StatusSent       = "document.sent"
	StatusCompleted  = "document.completed"
)

// Recipient identifies one person a document is addressed to.
type Recipient struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// DisplayName returns "First Last", falling back to the email local part
// when both names are empty.
func (r Recipient) DisplayName() string {
	name := r.FirstName
	if r.LastName != "" {
		if name != "" {
			name += " "
		}
		name += r.LastName
	}
	if name != "" {
		return name
	}
	if at := strings.IndexByte(r.Email, '@'); at > 0 {
		return r.Email[:at]
	}
	return r.Email
}

// Document is the provider's response to a document upload.
type Document struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// RecipientState is the provider's per-recipient signing state.
type RecipientState struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Role         string `json:"role"`
	HasCompleted bool   `json:"has_completed"`
}

// DisplayName mirrors Recipient.DisplayName for provider-side recipient state.
func (r RecipientState) DisplayName() string {
	return Recipient{
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}.DisplayName()
}

// Details is the full provider view of a document, including recipient state.
type Details struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Status     string           `json:"status"`
	Recipients []RecipientState `json:"recipients"`
}

// Signed reports whether every recipient has completed signing, either via
// the terminal document status or per-recipient completion flags.
func (d *Details) Signed() bool {
	if d.Status == StatusCompleted {
		return true
	}
	if len(d.Recipients) == 0 {
		return false
	}
	for _, r := range d.Recipients {
		if !r.HasCompleted {
			return false
		}
	}
	return true
}

// Unsigned returns the recipients that have not yet completed signing.
func (d *Details) Unsigned() []RecipientState {
	var unsigned []RecipientState
	for _, r := range d.Recipients {
		if !r.HasCompleted {
			unsigned = append(unsigned, r)
		}
	}
	return unsigned
}

// FieldPosition places a field on a page. Offsets are in PDF points from the
// top-left anchor.
type FieldPosition struct {
	OffsetX     float64 `json:"offset_x"`
	OffsetY     float64 `json:"offset_y"`
	AnchorPoint string  `json:"anchor_point"`
}

// FieldStyle sizes a field in PDF points.
type FieldStyle struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FieldLayout is the page placement of a field. Pages are 1-indexed.
type FieldLayout struct {
	Page     int           `json:"page"`
	Position FieldPosition `json:"position"`
	Style    FieldStyle    `json:"style"`
}

// FieldSettings carries per-field behavior flags.
type FieldSettings struct {
	Required bool `json:"required"`
}

// Field is one interactive field created on an uploaded document and
// assigned to a provider recipient by ID.
type Field struct {
	Name       string        `json:"name"`
	Title      string        `json:"title"`
	Type       string        `json:"type"`
	AssignedTo string        `json:"assigned_to"`
	Settings   FieldSettings `json:"settings"`
	Layout     FieldLayout   `json:"layout"`
}
