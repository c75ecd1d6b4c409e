// Package postgrest implements the service.Service interface over the
// PostgREST API exposed by a hosted Supabase project.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"supatodo/internal/config"
	"supatodo/internal/service"
)

const (
	// RestPath is the PostgREST mount point under the project URL.
	RestPath = "/rest/v1/"

	preferRepresentation = "return=representation"
	preferMinimal        = "return=minimal"
)

// Client implements service.Service using PostgREST.
type Client struct {
	http     *http.Client
	endpoint *url.URL
	key      string
	table    string
}

// New creates a client from cfg. Requires cfg.URL and cfg.Key.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	return NewWithHTTPClient(ctx, cfg.URL, cfg.Key, cfg.Table, nil)
}

// NewWithHTTPClient creates a client on top of base (for testing).
// A nil base uses http.DefaultClient. Every request carries the key as
// both the apikey header and a bearer token.
func NewWithHTTPClient(ctx context.Context, rawURL, key, table string, base *http.Client) (*Client, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("missing access key")
	}
	if table == "" {
		table = config.DefaultTable
	}

	u, err := url.Parse(strings.TrimRight(rawURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid record store URL: %q", rawURL)
	}
	endpoint := u.JoinPath(RestPath, table)

	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: key, TokenType: "Bearer"})

	return &Client{
		http:     oauth2.NewClient(ctx, ts),
		endpoint: endpoint,
		key:      key,
		table:    table,
	}, nil
}

// ListTasks returns every task ordered by ID descending.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "id.desc")

	req, err := c.newRequest(ctx, http.MethodGet, q, nil)
	if err != nil {
		return nil, err
	}
	return c.doRows(req)
}

// InsertTask creates a task and returns the echoed row.
func (c *Client) InsertTask(ctx context.Context, t service.NewTask) ([]service.Task, error) {
	req, err := c.newRequest(ctx, http.MethodPost, nil, []service.NewTask{t})
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", preferRepresentation)
	return c.doRows(req)
}

// SetDone updates the done flag of one task and returns the echoed row.
func (c *Client) SetDone(ctx context.Context, id int64, done bool) ([]service.Task, error) {
	req, err := c.newRequest(ctx, http.MethodPatch, idFilter(id), map[string]bool{"done": done})
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", preferRepresentation)
	return c.doRows(req)
}

// DeleteTask deletes the task with the given ID.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, idFilter(id), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", preferMinimal)

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapError(err)
	}
	defer resp.Body.Close()
	if err := googleapi.CheckResponse(resp); err != nil {
		return wrapError(err)
	}
	return nil
}

func idFilter(id int64) url.Values {
	q := url.Values{}
	q.Set("id", "eq."+strconv.FormatInt(id, 10))
	return q
}

func (c *Client) newRequest(ctx context.Context, method string, q url.Values, body any) (*http.Request, error) {
	u := *c.endpoint
	if q != nil {
		u.RawQuery = q.Encode()
	}

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// doRows sends req and decodes a JSON array of rows. An empty body is
// reported as zero rows, not as an error.
func (c *Client) doRows(req *http.Request) ([]service.Task, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, wrapError(err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return nil, wrapError(err)
	}

	rows := []service.Task{}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		if errors.Is(err, io.EOF) {
			return []service.Task{}, nil
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return rows, nil
}
