package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is the Graph API version the messages endpoint is called on.
const DefaultBaseURL = "https://graph.facebook.com/v17.0"

type Client struct {
	baseURL       string
	phoneNumberID string
	apiKey        string
	http          *http.Client
	log           logrus.FieldLogger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client, e.g. to set a timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

func NewClient(baseURL, phoneNumberID, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		phoneNumberID: phoneNumberID,
		apiKey:        apiKey,
		http:          &http.Client{},
		log:           logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SendInteractiveButtons(ctx context.Context, msg OutgoingMessage, buttons []InteractiveButton) (json.RawMessage, error) {
	return c.Send(ctx, Build(msg, NewButtonAction(buttons)))
}

func (c *Client) SendList(ctx context.Context, msg OutgoingMessage, listTitle string, sections []ListSection) (json.RawMessage, error) {
	return c.Send(ctx, Build(msg, NewListAction(listTitle, sections)))
}

// Send issues exactly one POST and returns the response body unmodified.
// Every failure is reported as a *RequestFailure.
func (c *Client) Send(ctx context.Context, msg SendMessageRequest) (json.RawMessage, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, &RequestFailure{Op: "marshaling message", Err: err}
	}

	url := c.endpoint()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &RequestFailure{Op: "building request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.log.WithFields(logrus.Fields{"url": url, "to": msg.To}).Debugf("whatsapp: POST %s", payload)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestFailure{Op: "sending message", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestFailure{Op: "reading response", StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusFailure(resp.StatusCode, respBody)
	}
	return json.RawMessage(respBody), nil
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
}

// ParseSendResponse decodes a success body returned by Send.
func ParseSendResponse(body []byte) (*SendResponse, error) {
	var resp SendResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding send response: %w", err)
	}
	return &resp, nil
}

// MessageID returns the id of the first accepted message, or "".
func (r *SendResponse) MessageID() string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].ID
}
