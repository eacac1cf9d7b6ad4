package buttons

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/lojasmm/wabuttons/internal/whatsapp"
)

// Dispatcher sends a built request; *whatsapp.Client satisfies it.
type Dispatcher interface {
	Send(ctx context.Context, msg whatsapp.SendMessageRequest) (json.RawMessage, error)
}

type Executor struct {
	dispatcher Dispatcher
	log        logrus.FieldLogger
}

func NewExecutor(d Dispatcher, log logrus.FieldLogger) *Executor {
	return &Executor{dispatcher: d, log: log}
}

// NewClient builds the dispatcher for a set of credentials.
func NewClient(baseURL string, creds Credentials, opts ...whatsapp.Option) *whatsapp.Client {
	return whatsapp.NewClient(baseURL, creds.PhoneNumberID, creds.APIKey, opts...)
}

// Execute validates p, builds the message and sends it once. On success the
// remote response body is returned unmodified. Dispatch errors are logged and
// returned as they came from the dispatcher.
func (e *Executor) Execute(ctx context.Context, p Params) (json.RawMessage, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	req := whatsapp.Build(p.OutgoingMessage(), p.WhatsAppAction())
	log := e.log.WithFields(logrus.Fields{"action": p.Mode(), "to": p.PhoneNumber})
	log.Debugf("buttons: sending %s message", req.Interactive.Type)

	resp, err := e.dispatcher.Send(ctx, req)
	if err != nil {
		log.Errorf("buttons: error making %s request to WhatsApp API: %v", p.Mode(), err)
		return nil, err
	}
	return resp, nil
}
