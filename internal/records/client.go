// Package records talks to a generic record backend over HTTP. Tables are
// queried with field lists, filters, ordering and paging; responses carry a
// success flag, a message and the matching rows.
package records

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

const defaultTimeout = 10 * time.Second

var (
	errCircuitOpen  = errors.New("record backend circuit open")
	errUnsuccessful = errors.New("record backend reported failure")
)

// Config holds connection settings for the record backend.
type Config struct {
	BaseURL   string
	ProjectID string
	PublicKey string
	Timeout   time.Duration
}

// Client is a record backend client. Construct it once and share it.
type Client struct {
	baseURL   string
	projectID string
	publicKey string
	http      *http.Client
	circuit   *gobreaker.CircuitBreaker
}

// NewClient constructs a Client with its own circuit breaker.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         "records",
		MaxRequests:  5,
		Interval:     1 * time.Minute,
		Timeout:      30 * time.Second,
		IsSuccessful: isBackendHealthy,
	})

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		projectID: cfg.ProjectID,
		publicKey: cfg.PublicKey,
		http:      &http.Client{Timeout: timeout},
		circuit:   cb,
	}
}

// Condition filters a field. Operator is one of "Contains" or "ExactMatch".
type Condition struct {
	FieldName string `json:"FieldName"`
	Operator  string `json:"Operator"`
	Values    []any  `json:"Values"`
}

// ConditionGroup combines conditions with "AND" or "OR".
type ConditionGroup struct {
	Operator   string      `json:"operator"`
	Conditions []Condition `json:"conditions"`
}

// OrderBy sorts by a field, "ASC" or "DESC".
type OrderBy struct {
	FieldName string `json:"FieldName"`
	SortType  string `json:"SortType"`
}

// PagingInfo limits the result window.
type PagingInfo struct {
	Limit  int `json:"Limit"`
	Offset int `json:"Offset"`
}

// Query is the body of a fetch request.
type Query struct {
	Fields      []string         `json:"Fields"`
	Where       []Condition      `json:"where,omitempty"`
	WhereGroups []ConditionGroup `json:"whereGroups,omitempty"`
	OrderBy     []OrderBy        `json:"orderBy,omitempty"`
	PagingInfo  PagingInfo       `json:"PagingInfo"`
}

// isBackendHealthy reports whether err leaves the backend's health intact.
// Callers giving up on their own context say nothing about the backend.
func isBackendHealthy(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// FetchRecords queries table and decodes the returned rows into dst,
// which must be a pointer to a slice.
func (c *Client) FetchRecords(ctx context.Context, table string, q Query, dst any) error {
	body, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encoding query for %s: %w", table, err)
	}
	endpoint := c.baseURL + "/tables/" + url.PathEscape(table) + "/records/query"

	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		return c.post(ctx, endpoint, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return fmt.Errorf("fetching %s records: %w", table, err)
	}

	env, ok := result.(*envelope)
	if !ok {
		return fmt.Errorf("unexpected result type from circuit breaker")
	}
	if !env.Success {
		return fmt.Errorf("fetching %s records: %w: %s", table, errUnsuccessful, env.Message)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return fmt.Errorf("decoding %s records: %w", table, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Project-Id", c.projectID)
	req.Header.Set("X-Public-Key", c.publicKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("POST %s returned status %d", endpoint, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding response from %s: %w", endpoint, err)
	}
	return &env, nil
}
