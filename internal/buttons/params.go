package buttons

import (
	"fmt"

	"github.com/lojasmm/wabuttons/internal/whatsapp"
)

const (
	ActionInteractive = "interactive"
	ActionListButtons = "listButtons"

	HeaderNone  = "none"
	HeaderImage = "image"

	maxPlainButtons = 3
)

// Params carries the user-facing fields of a send request, using the same
// names the workflow editor exposes.
type Params struct {
	Action                string            `json:"action"`
	ListTitle             string            `json:"listTitle,omitempty"`
	Message               string            `json:"message"`
	PhoneNumber           string            `json:"phoneNumber"`
	HeaderAction          string            `json:"headerAction"`
	HeaderImageURL        string            `json:"headerImageURL,omitempty"`
	Footer                string            `json:"footer,omitempty"`
	PlainButton           PlainButtons      `json:"plainButton"`
	ButtonWithDescription SectionCollection `json:"buttonWithDescription"`
}

type PlainButtons struct {
	FieldValues []PlainButton `json:"fieldValues"`
}

type PlainButton struct {
	ButtonTitle string `json:"buttonTitle"`
}

type SectionCollection struct {
	Section []SectionParam `json:"section"`
}

type SectionParam struct {
	SectionTitle    string        `json:"sectionTitle"`
	ButtonInSection RowCollection `json:"buttonInSection"`
}

type RowCollection struct {
	Buttons []RowParam `json:"buttons"`
}

type RowParam struct {
	ButtonTitle       string `json:"buttonTitle"`
	ButtonDescription string `json:"buttonDescription"`
}

// Credentials are supplied by the host's credential store and only used to
// construct a client.
type Credentials struct {
	APIKey        string
	PhoneNumberID string
}

// Mode returns the requested action, defaulting to interactive.
func (p Params) Mode() string {
	if p.Action == "" {
		return ActionInteractive
	}
	return p.Action
}

func (p Params) headerAction() string {
	if p.HeaderAction == "" {
		return HeaderNone
	}
	return p.HeaderAction
}

// Validate checks required fields before anything is sent.
func (p Params) Validate() error {
	if p.Message == "" {
		return &ValidationError{Field: "message", Reason: "is required"}
	}

	switch p.headerAction() {
	case HeaderNone:
	case HeaderImage:
		if p.HeaderImageURL == "" {
			return &ValidationError{Field: "headerImageURL", Reason: "is required when headerAction is image"}
		}
	default:
		return &ValidationError{Field: "headerAction", Reason: "must be none or image, got " + quote(p.HeaderAction)}
	}

	switch p.Mode() {
	case ActionInteractive:
		if n := len(p.PlainButton.FieldValues); n > maxPlainButtons {
			return &ValidationError{Field: "plainButton", Reason: fmt.Sprintf("accepts at most %d buttons, got %d", maxPlainButtons, n)}
		}
	case ActionListButtons:
		if p.ListTitle == "" {
			return &ValidationError{Field: "listTitle", Reason: "is required for listButtons"}
		}
	default:
		return &ValidationError{Field: "action", Reason: "must be interactive or listButtons, got " + quote(p.Action)}
	}
	return nil
}

// OutgoingMessage maps the shared fields onto the envelope builder's input.
func (p Params) OutgoingMessage() whatsapp.OutgoingMessage {
	msg := whatsapp.OutgoingMessage{
		To:     p.PhoneNumber,
		Body:   p.Message,
		Footer: p.Footer,
	}
	if p.headerAction() == HeaderImage {
		msg.HeaderImage = &whatsapp.Image{Link: p.HeaderImageURL}
	}
	return msg
}

// WhatsAppAction returns the button or list action selected by p.Action.
// Call Validate first; an unknown action is treated as interactive.
func (p Params) WhatsAppAction() whatsapp.Action {
	if p.Mode() == ActionListButtons {
		sections := make([]whatsapp.ListSection, len(p.ButtonWithDescription.Section))
		for i, s := range p.ButtonWithDescription.Section {
			rows := make([]whatsapp.ListRow, len(s.ButtonInSection.Buttons))
			for j, r := range s.ButtonInSection.Buttons {
				rows[j] = whatsapp.ListRow{Title: r.ButtonTitle, Description: r.ButtonDescription}
			}
			sections[i] = whatsapp.ListSection{Title: s.SectionTitle, Rows: rows}
		}
		return whatsapp.NewListAction(p.ListTitle, sections)
	}

	buttons := make([]whatsapp.InteractiveButton, len(p.PlainButton.FieldValues))
	for i, b := range p.PlainButton.FieldValues {
		buttons[i] = whatsapp.InteractiveButton{Title: b.ButtonTitle}
	}
	return whatsapp.NewButtonAction(buttons)
}

func quote(s string) string {
	return `"` + s + `"`
}
