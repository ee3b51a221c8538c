package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmrmediateam/eagan-luxury-sub001/config"
)

// QueryError is a non-2xx response from the query API.
type QueryError struct {
	Status int
	Body   string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("sanity query error %d: %s", e.Status, e.Body)
}

// Client runs GROQ queries against one Sanity project and dataset.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewClient(cfg *config.SanityConfig, hc *http.Client) *Client {
	host := "api"
	if cfg.UseCDN && cfg.Token == "" {
		host = "apicdn"
	}
	version := strings.TrimPrefix(cfg.APIVersion, "v")
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: fmt.Sprintf("https://%s.%s.sanity.io/v%s/data/query/%s", cfg.ProjectID, host, version, cfg.Dataset),
		token:   cfg.Token,
		client:  hc,
	}
}

// WithBaseURL points the client at another endpoint, e.g. an httptest server.
func (c *Client) WithBaseURL(u string) *Client {
	cp := *c
	cp.baseURL = strings.TrimRight(u, "/")
	return &cp
}

// Query runs groq with params bound as $name and decodes "result" into out.
func (c *Client) Query(ctx context.Context, groq string, params map[string]any, out any) error {
	q := url.Values{}
	q.Set("query", groq)
	for name, v := range params {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode param %s: %w", name, err)
		}
		q.Set("$"+name, string(data))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sanity query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &QueryError{Status: resp.StatusCode, Body: string(body)}
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode sanity response: %w", err)
	}
	if out == nil || len(envelope.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("decode sanity result: %w", err)
	}
	return nil
}
