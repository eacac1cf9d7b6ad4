package whatsapp

import "strconv"

// OutgoingMessage holds the fields shared by every interactive message.
// A nil HeaderImage means no header block is sent.
type OutgoingMessage struct {
	To          string
	Body        string
	HeaderImage *Image
	Footer      string
}

type InteractiveButton struct {
	Title string
}

type ListSection struct {
	Title string
	Rows  []ListRow
}

type ListRow struct {
	Title       string
	Description string
}

// Action is either a ButtonAction or a ListAction.
type Action interface {
	interactiveType() string
}

// ButtonAction serializes as {} when it carries no buttons.
type ButtonAction struct {
	Buttons []Button `json:"buttons,omitempty"`
}

func (ButtonAction) interactiveType() string { return "button" }

type ListAction struct {
	Button   string    `json:"button"`
	Sections []Section `json:"sections"`
}

func (ListAction) interactiveType() string { return "list" }

// NewButtonAction assigns reply ids button_0, button_1, ... in input order.
func NewButtonAction(buttons []InteractiveButton) ButtonAction {
	if len(buttons) == 0 {
		return ButtonAction{}
	}
	wa := make([]Button, len(buttons))
	for i, b := range buttons {
		wa[i] = Button{
			Type:  "reply",
			Reply: ButtonReply{ID: rowID(i), Title: b.Title},
		}
	}
	return ButtonAction{Buttons: wa}
}

// NewListAction converts sections into their wire form. Row ids restart at
// button_0 in every section, so ids repeat across sections.
func NewListAction(listTitle string, sections []ListSection) ListAction {
	wa := make([]Section, len(sections))
	for i, s := range sections {
		rows := make([]SectionRow, len(s.Rows))
		for j, r := range s.Rows {
			rows[j] = SectionRow{ID: rowID(j), Title: r.Title, Description: r.Description}
		}
		wa[i] = Section{Title: s.Title, Rows: rows}
	}
	return ListAction{Button: listTitle, Sections: wa}
}

// Build assembles the request body for msg with the given action attached.
func Build(msg OutgoingMessage, action Action) SendMessageRequest {
	interactive := Interactive{
		Type:   action.interactiveType(),
		Body:   InteractiveBody{Text: msg.Body},
		Action: action,
	}
	if msg.HeaderImage != nil {
		interactive.Header = &Header{
			Type:  "image",
			Image: &Image{Link: msg.HeaderImage.Link},
		}
	}
	if len(msg.Footer) > 0 {
		interactive.Footer = &Footer{Text: msg.Footer}
	}

	return SendMessageRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               msg.To,
		Type:             "interactive",
		Interactive:      interactive,
	}
}

func rowID(i int) string {
	return "button_" + strconv.Itoa(i)
}
