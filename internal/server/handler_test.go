package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/lojasmm/wabuttons/internal/buttons"
	"github.com/lojasmm/wabuttons/internal/store"
	"github.com/lojasmm/wabuttons/internal/whatsapp"
)

type fakeExecutor struct {
	resp json.RawMessage
	err  error
}

func (f *fakeExecutor) Execute(_ context.Context, p buttons.Params) (json.RawMessage, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return f.resp, f.err
}

func newTestServer(t *testing.T, exec Executor) (*httptest.Server, *store.BoltStore) {
	t.Helper()
	s, err := store.NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	h := NewHandler(exec, s, log)
	webhook := whatsapp.NewWebhookHandler("tok", h.RecordReply, log)
	srv := httptest.NewServer(NewRouter(h, webhook, log))
	t.Cleanup(srv.Close)
	return srv, s
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandleSend_Success(t *testing.T) {
	const remote = `{"messaging_product":"whatsapp","messages":[{"id":"wamid.S"}]}`
	srv, s := newTestServer(t, &fakeExecutor{resp: json.RawMessage(remote)})

	resp := postJSON(t, srv.URL+"/messages", `{"message":"Hi","phoneNumber":"155","plainButton":{"fieldValues":[{"buttonTitle":"Yes"}]}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != remote {
		t.Errorf("body = %s, want remote body verbatim", body)
	}

	id := resp.Header.Get("X-Delivery-ID")
	d, err := s.GetDelivery(id)
	if err != nil || d == nil {
		t.Fatalf("GetDelivery(%q) = %v, %v", id, d, err)
	}
	if d.Status != store.StatusSent || d.WAMessageID != "wamid.S" || d.Action != buttons.ActionInteractive {
		t.Errorf("delivery = %+v", d)
	}
}

func TestHandleSend_ValidationError(t *testing.T) {
	srv, _ := newTestServer(t, &fakeExecutor{})

	resp := postJSON(t, srv.URL+"/messages", `{"message":"Hi","headerAction":"image"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if resp.Header.Get("X-Delivery-ID") != "" {
		t.Error("validation failures must not be journaled")
	}

	var out map[string]string
	json.NewDecoder(resp.Body).Decode(&out)
	if !strings.Contains(out["error"], "headerImageURL") {
		t.Errorf("error = %q", out["error"])
	}
}

func TestHandleSend_BadJSON(t *testing.T) {
	srv, _ := newTestServer(t, &fakeExecutor{})

	resp := postJSON(t, srv.URL+"/messages", `{`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleSend_RequestFailure(t *testing.T) {
	failure := &whatsapp.RequestFailure{Op: "whatsapp API", StatusCode: 401, Message: "Invalid OAuth access token"}
	srv, s := newTestServer(t, &fakeExecutor{err: failure})

	resp := postJSON(t, srv.URL+"/messages", `{"message":"Hi","phoneNumber":"155"}`)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}

	var out map[string]string
	json.NewDecoder(resp.Body).Decode(&out)
	if !strings.Contains(out["error"], "Invalid OAuth access token") {
		t.Errorf("error = %q", out["error"])
	}

	d, _ := s.GetDelivery(resp.Header.Get("X-Delivery-ID"))
	if d == nil || d.Status != store.StatusFailed || d.Response != nil {
		t.Errorf("delivery = %+v", d)
	}
}

func TestGetDelivery_WithReplies(t *testing.T) {
	srv, s := newTestServer(t, &fakeExecutor{resp: json.RawMessage(`{"messages":[{"id":"wamid.S"}]}`)})

	send := postJSON(t, srv.URL+"/messages", `{"message":"Hi","phoneNumber":"155"}`)
	id := send.Header.Get("X-Delivery-ID")

	webhook := `{"entry":[{"changes":[{"value":{"messages":[{"from":"155","id":"wamid.R","type":"interactive",
		"context":{"id":"wamid.S"},"interactive":{"type":"button_reply","button_reply":{"id":"button_0","title":"Yes"}}}]}}]}]}`
	if resp := postJSON(t, srv.URL+"/webhook", webhook); resp.StatusCode != http.StatusOK {
		t.Fatalf("webhook status = %d", resp.StatusCode)
	}
	if replies, _ := s.RepliesFor("wamid.S"); len(replies) != 1 {
		t.Fatalf("stored replies = %d, want 1", len(replies))
	}

	resp, err := http.Get(srv.URL + "/messages/" + id)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var view struct {
		ID      string           `json:"id"`
		Replies []whatsapp.Reply `json:"replies"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if view.ID != id || len(view.Replies) != 1 || view.Replies[0].Title != "Yes" {
		t.Errorf("view = %+v", view)
	}
}

func TestGetDelivery_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, &fakeExecutor{})

	resp, err := http.Get(srv.URL + "/messages/missing")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &fakeExecutor{})

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("health = %d %q", resp.StatusCode, body)
	}
}
