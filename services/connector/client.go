// Package connector posts bot replies to the Bot Connector REST API.
package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flybot/models"

	"golang.org/x/oauth2/clientcredentials"
)

// Config holds the bot's channel credentials.
type Config struct {
	AppID       string
	AppPassword string
	TokenURL    string
	Scope       string
}

// Client sends activities back to the channel that delivered a turn.
type Client struct {
	http *http.Client
}

// New returns a client authenticating with the client-credentials grant.
// Without an app id requests are sent unauthenticated, which is what the
// emulator expects.
func New(ctx context.Context, cfg Config) *Client {
	if cfg.AppID == "" {
		return &Client{http: &http.Client{Timeout: 15 * time.Second}}
	}
	cc := &clientcredentials.Config{
		ClientID:     cfg.AppID,
		ClientSecret: cfg.AppPassword,
		TokenURL:     cfg.TokenURL,
		Scopes:       []string{cfg.Scope},
	}
	hc := cc.Client(ctx)
	hc.Timeout = 15 * time.Second
	return &Client{http: hc}
}

// NewWithHTTPClient wraps an already configured HTTP client.
func NewWithHTTPClient(hc *http.Client) *Client {
	return &Client{http: hc}
}

// SendToConversation posts a as a reply in its conversation, or as a new
// message when it does not reply to anything.
func (c *Client) SendToConversation(ctx context.Context, a *models.Activity) (*models.ResourceResponse, error) {
	endpoint, err := activitiesURL(a)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode activity: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send activity: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read connector response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("connector returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var rr models.ResourceResponse
	if len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, &rr); err != nil {
			return nil, fmt.Errorf("decode connector response: %w", err)
		}
	}
	return &rr, nil
}

func activitiesURL(a *models.Activity) (string, error) {
	if a.ServiceURL == "" {
		return "", fmt.Errorf("activity has no service url")
	}
	if a.Conversation.ID == "" {
		return "", fmt.Errorf("activity has no conversation id")
	}
	u := strings.TrimRight(a.ServiceURL, "/") + "/v3/conversations/" + url.PathEscape(a.Conversation.ID) + "/activities"
	if a.ReplyToID != "" {
		u += "/" + url.PathEscape(a.ReplyToID)
	}
	return u, nil
}
