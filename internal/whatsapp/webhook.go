package whatsapp

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Reply is a user's answer to a button or list message.
type Reply struct {
	From        string `json:"from"`
	MessageID   string `json:"message_id"`
	ContextID   string `json:"context_id"` // id of the message being answered
	Kind        string `json:"kind"`       // button_reply or list_reply
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// ReplyHandler is called once for each reply found in a webhook notification.
type ReplyHandler func(Reply)

type WebhookHandler struct {
	verifyToken string
	onReply     ReplyHandler
	log         logrus.FieldLogger
}

func NewWebhookHandler(verifyToken string, onReply ReplyHandler, log logrus.FieldLogger) *WebhookHandler {
	return &WebhookHandler{
		verifyToken: verifyToken,
		onReply:     onReply,
		log:         log,
	}
}

// HandleVerify handles the GET webhook verification from Meta.
// Reference: https://developers.facebook.com/docs/whatsapp/cloud-api/get-started#webhook-verification
func (h *WebhookHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	http.Error(w, "Forbidden", http.StatusForbidden)
}

// HandleIncoming processes incoming webhook POST notifications.
// Meta retries anything but a 200, so undecodable bodies are logged and acknowledged.
func (h *WebhookHandler) HandleIncoming(w http.ResponseWriter, r *http.Request) {
	var payload WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.log.Warnf("webhook: failed to decode payload: %v", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if reply, ok := replyFrom(msg); ok {
					h.onReply(reply)
				}
			}
		}
	}

	w.WriteHeader(http.StatusOK)
}

func replyFrom(msg Message) (Reply, bool) {
	if msg.Type != "interactive" || msg.Interactive == nil {
		return Reply{}, false
	}
	reply := Reply{
		From:      msg.From,
		MessageID: msg.ID,
		Kind:      msg.Interactive.Type,
		Timestamp: msg.Timestamp,
	}
	if msg.Context != nil {
		reply.ContextID = msg.Context.ID
	}

	switch msg.Interactive.Type {
	case "button_reply":
		if msg.Interactive.ButtonReply == nil {
			return Reply{}, false
		}
		reply.ID = msg.Interactive.ButtonReply.ID
		reply.Title = msg.Interactive.ButtonReply.Title
	case "list_reply":
		if msg.Interactive.ListReply == nil {
			return Reply{}, false
		}
		reply.ID = msg.Interactive.ListReply.ID
		reply.Title = msg.Interactive.ListReply.Title
		reply.Description = msg.Interactive.ListReply.Description
	default:
		return Reply{}, false
	}
	return reply, true
}
