package dispatch

import (
	"context"
	"fmt"

	"github.com/signetlabs/chase/internal/agents"
	"github.com/signetlabs/chase/pkg/pdf"
	"github.com/signetlabs/chase/pkg/pipeline"
	"github.com/signetlabs/chase/pkg/signing"
)

// Step names in execution order.
const (
	StepExtract      = "extract"
	StepValidate     = "validate"
	StepPrepareField = "prepare_fields"
	StepUpload       = "upload"
	StepAssignFields = "assign_fields"
	StepSend         = "send"
)

// build assembles the send pipeline. The gate after validation stops the
// run cleanly when any recipient is rejected; every later failure is a
// step error.
func build(rt *Runtime) (*pipeline.Pipeline[State], error) {
	p := pipeline.New[State]("dispatch", rt.Logger)

	steps := []struct {
		name string
		run  func(ctx context.Context, s State) (State, error)
	}{
		{StepExtract, rt.extract},
		{StepValidate, rt.validate},
		{StepPrepareField, rt.prepareFields},
		{StepUpload, rt.upload},
		{StepAssignFields, rt.assignFields},
		{StepSend, rt.send},
	}
	for _, step := range steps {
		if err := p.AddStep(step.name, step.run); err != nil {
			return nil, err
		}
	}

	if err := p.AddGate(StepValidate, func(s State) bool {
		return s.Validation != nil && s.Validation.Valid
	}); err != nil {
		return nil, err
	}

	return p, nil
}

// extract pulls text out of the PDF and asks the model who the recipients
// are, then assigns provider roles in document order.
func (rt *Runtime) extract(ctx context.Context, s State) (State, error) {
	text, err := rt.PDF.ExtractText(s.RawInput)
	if err != nil {
		return s, err
	}
	s.DocumentText = text

	pages, err := rt.PDF.PageCount(s.RawInput)
	if err != nil {
		return s, err
	}
	s.PageCount = pages

	recipients, err := rt.Source.Recipients(ctx, text)
	if err != nil {
		return s, err
	}
	if len(recipients) == 0 {
		return s, fmt.Errorf("no recipients found in document")
	}

	for i := range recipients {
		recipients[i].Role = roleFor(i)
	}
	s.Recipients = recipients
	return s, nil
}

func (rt *Runtime) validate(_ context.Context, s State) (State, error) {
	s.Validation = Validate(s.Recipients)
	if !s.Validation.Valid {
		for _, invalid := range s.Validation.Invalid {
			rt.Logger.Warn(
				"recipient rejected",
				"document", s.DocumentName,
				"email", invalid.Recipient.Email,
				"reason", invalid.Reason,
			)
		}
	}
	return s, nil
}

// prepareFields determines signature geometry and stamps a visible anchor
// label per recipient so signers can find their row.
func (rt *Runtime) prepareFields(ctx context.Context, s State) (State, error) {
	layout, err := rt.Analyst.Analyze(ctx, s.DocumentText, s.PageCount)
	if err != nil {
		return s, err
	}
	s.Layout = layout

	anchors := make([]pdf.Anchor, len(s.Recipients))
	for i, r := range s.Recipients {
		anchors[i] = pdf.Anchor{
			Page: layout.Page,
			X:    layout.SignatureColumnX,
			Y:    rowY(layout, i),
			Text: fmt.Sprintf("%s (%s)", r.DisplayName(), r.Role),
		}
	}

	stamped, err := rt.PDF.StampAnchors(s.RawInput, anchors)
	if err != nil {
		return s, err
	}
	s.Stamped = stamped
	return s, nil
}

// upload creates the provider document and waits until it is editable.
func (rt *Runtime) upload(ctx context.Context, s State) (State, error) {
	doc, err := rt.Signing.Upload(ctx, s.DocumentName, s.Stamped, s.Recipients)
	if err != nil {
		return s, err
	}
	s.Document = doc

	if _, err := rt.Signing.WaitReady(ctx, doc.ID); err != nil {
		return s, err
	}
	return s, nil
}

// assignFields places one signature field per recipient on the draft.
func (rt *Runtime) assignFields(ctx context.Context, s State) (State, error) {
	fields := make([]signing.Field, len(s.Recipients))
	for i, r := range s.Recipients {
		fields[i] = signing.Field{
			Name:       fmt.Sprintf("signature_%d", i+1),
			Title:      fmt.Sprintf("Signature: %s", r.DisplayName()),
			Type:       "signature",
			AssignedTo: r.Email,
			Settings:   signing.FieldSettings{Required: requiredRole(r.Role)},
			Layout: signing.FieldLayout{
				Page: s.Layout.Page,
				Position: signing.FieldPosition{
					OffsetX:     s.Layout.SignatureColumnX,
					OffsetY:     rowY(s.Layout, i),
					AnchorPoint: "bottom-left",
				},
				Style: signing.FieldStyle{Width: 180, Height: 40},
			},
		}
	}

	return s, rt.Signing.CreateFields(ctx, s.Document.ID, fields)
}

func (rt *Runtime) send(ctx context.Context, s State) (State, error) {
	message := fmt.Sprintf("Please review and sign %q.", s.DocumentName)
	if err := rt.Signing.Send(ctx, s.Document.ID, message); err != nil {
		return s, err
	}
	s.Sent = true
	return s, nil
}

// roleFor assigns provider roles in document order: the first recipient
// signs, the second approves, everyone else is copied.
func roleFor(i int) string {
	switch i {
	case 0:
		return signing.RoleSigner
	case 1:
		return signing.RoleApprover
	case 2:
		return signing.RoleCC
	default:
		return fmt.Sprintf("%s %d", signing.RoleCC, i-1)
	}
}

func requiredRole(role string) bool {
	return role == signing.RoleSigner || role == signing.RoleApprover
}

// rowY is the baseline of the i-th signature row, descending from the top.
func rowY(l *agents.PageLayout, i int) float64 {
	return l.FirstRowY - float64(i)*l.RowHeight
}
