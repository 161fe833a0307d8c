// Package elevenlabs is the pull-side provider adapter: it lists
// conversations and agents from the vendor's REST API and hands the raw
// payloads to normalization unchanged. No payload interpretation happens
// here.
package elevenlabs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.elevenlabs.io"
const defaultPageSize = 100

// HTTPError is a non-2xx API response.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("elevenlabs: http %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	pageSize   int

	// fetchDetails controls whether ListCalls pulls the full conversation
	// record per item; the list endpoint omits transcripts.
	fetchDetails bool
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }
func WithBaseURL(u string) Option           { return func(c *Client) { c.baseURL = u } }
func WithPageSize(n int) Option             { return func(c *Client) { c.pageSize = n } }
func WithDetailFetch(on bool) Option        { return func(c *Client) { c.fetchDetails = on } }

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		pageSize:   defaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseURL = strings.TrimRight(strings.TrimSpace(c.baseURL), "/")
	return c
}

type conversationPage struct {
	Conversations []json.RawMessage `json:"conversations"`
	NextCursor    string            `json:"next_cursor"`
	HasMore       bool              `json:"has_more"`
}

// ListCalls retrieves the complete conversation list, following cursor
// pagination until exhausted. With detail fetch enabled, each summary is
// replaced by the full conversation record.
func (c *Client) ListCalls(ctx context.Context) ([]json.RawMessage, error) {
	var out []json.RawMessage
	cursor := ""
	for {
		q := url.Values{}
		q.Set("page_size", strconv.Itoa(c.pageSize))
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		var page conversationPage
		if err := c.getJSON(ctx, "/v1/convai/conversations?"+q.Encode(), &page); err != nil {
			return nil, err
		}
		out = append(out, page.Conversations...)

		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	if !c.fetchDetails {
		return out, nil
	}
	return c.expandDetails(ctx, out)
}

// GetConversation fetches one full conversation record by id.
func (c *Client) GetConversation(ctx context.Context, conversationID string) (json.RawMessage, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("elevenlabs: conversation id is required")
	}
	var raw json.RawMessage
	if err := c.getJSON(ctx, "/v1/convai/conversations/"+url.PathEscape(conversationID), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

type agentPage struct {
	Agents     []json.RawMessage `json:"agents"`
	NextCursor string            `json:"next_cursor"`
	HasMore    bool              `json:"has_more"`
}

// ListAgents retrieves the full agent catalog with cursor pagination.
func (c *Client) ListAgents(ctx context.Context) ([]json.RawMessage, error) {
	var out []json.RawMessage
	cursor := ""
	for {
		q := url.Values{}
		q.Set("page_size", strconv.Itoa(c.pageSize))
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		var page agentPage
		if err := c.getJSON(ctx, "/v1/convai/agents?"+q.Encode(), &page); err != nil {
			return nil, err
		}
		out = append(out, page.Agents...)

		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	return out, nil
}

func (c *Client) expandDetails(ctx context.Context, summaries []json.RawMessage) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(summaries))
	for _, summary := range summaries {
		var head struct {
			ConversationID string `json:"conversation_id"`
		}
		if err := json.Unmarshal(summary, &head); err != nil || head.ConversationID == "" {
			// Keep the summary; normalization will classify it.
			out = append(out, summary)
			continue
		}
		full, err := c.GetConversation(ctx, head.ConversationID)
		if err != nil {
			// The summary still normalizes to a usable (thinner) record.
			out = append(out, summary)
			continue
		}
		out = append(out, full)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("elevenlabs: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("elevenlabs: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return json.Unmarshal(body, dst)
}
