package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lojasmm/wabuttons/internal/buttons"
	"github.com/lojasmm/wabuttons/internal/store"
	"github.com/lojasmm/wabuttons/internal/whatsapp"
)

// Executor runs one send request; *buttons.Executor satisfies it.
type Executor interface {
	Execute(ctx context.Context, p buttons.Params) (json.RawMessage, error)
}

type Handler struct {
	exec  Executor
	store store.Store
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewHandler(exec Executor, s store.Store, log logrus.FieldLogger) *Handler {
	return &Handler{exec: exec, store: s, log: log, now: time.Now}
}

type deliveryView struct {
	store.Delivery
	Replies []whatsapp.Reply `json:"replies"`
}

// HandleSend accepts Params as JSON and answers with the WhatsApp API
// response body unchanged.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var p buttons.Params
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	resp, err := h.exec.Execute(r.Context(), p)

	var ve *buttons.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, ve.Error())
		return
	}

	d := store.Delivery{
		ID:        uuid.NewString(),
		Action:    p.Mode(),
		To:        p.PhoneNumber,
		CreatedAt: h.now().UTC(),
	}
	if err != nil {
		d.Status = store.StatusFailed
		d.Error = err.Error()
	} else {
		d.Status = store.StatusSent
		d.Response = resp
		if parsed, perr := whatsapp.ParseSendResponse(resp); perr == nil {
			d.WAMessageID = parsed.MessageID()
		}
	}
	if serr := h.store.SaveDelivery(d); serr != nil {
		h.log.Errorf("server: saving delivery %s: %v", d.ID, serr)
	}

	w.Header().Set("X-Delivery-ID", d.ID)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(resp)
}

func (h *Handler) HandleGetDelivery(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := h.store.GetDelivery(id)
	if err != nil {
		h.log.Errorf("server: loading delivery %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if d == nil {
		writeError(w, http.StatusNotFound, "delivery not found")
		return
	}

	view := deliveryView{Delivery: *d, Replies: []whatsapp.Reply{}}
	if d.WAMessageID != "" {
		replies, err := h.store.RepliesFor(d.WAMessageID)
		if err != nil {
			h.log.Errorf("server: loading replies for %s: %v", d.WAMessageID, err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if replies != nil {
			view.Replies = replies
		}
	}
	writeJSON(w, http.StatusOK, view)
}

// RecordReply journals a webhook reply. Store errors are logged only, the
// webhook must still be acknowledged.
func (h *Handler) RecordReply(reply whatsapp.Reply) {
	h.log.WithFields(logrus.Fields{
		"from":    reply.From,
		"context": reply.ContextID,
		"id":      reply.ID,
	}).Infof("server: %s %q", reply.Kind, reply.Title)

	if err := h.store.SaveReply(reply); err != nil {
		h.log.Errorf("server: saving reply %s: %v", reply.MessageID, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
