package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client is a thin filtered-table CRUD client for the hosted data store's
// REST interface. It asserts nothing about the store beyond "rows are
// eventually visible on the next read".
type Client struct {
	baseURL string
	http    *resty.Client
}

// NewClient creates a table client for the given store URL and service key.
func NewClient(baseURL, key string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: resty.New().
			SetTimeout(60 * time.Second).
			SetHeader("apikey", key).
			SetHeader("Authorization", "Bearer "+key).
			SetHeader("Content-Type", "application/json"),
	}
}

// QueryOption adds a filter, ordering or limit to a table request.
type QueryOption func(url.Values)

// Eq filters rows where column equals value.
func Eq(column string, value interface{}) QueryOption {
	return func(v url.Values) {
		v.Set(column, fmt.Sprintf("eq.%v", value))
	}
}

// In filters rows where column is one of the values.
func In(column string, values []string) QueryOption {
	return func(v url.Values) {
		v.Set(column, "in.("+strings.Join(values, ",")+")")
	}
}

// OrderDesc orders results by column, newest/largest first.
func OrderDesc(column string) QueryOption {
	return func(v url.Values) {
		v.Set("order", column+".desc")
	}
}

// OrderAsc orders results by column ascending.
func OrderAsc(column string) QueryOption {
	return func(v url.Values) {
		v.Set("order", column+".asc")
	}
}

// Limit caps the number of returned rows.
func Limit(n int) QueryOption {
	return func(v url.Values) {
		v.Set("limit", strconv.Itoa(n))
	}
}

// Columns restricts the selected columns.
func Columns(cols ...string) QueryOption {
	return func(v url.Values) {
		v.Set("select", strings.Join(cols, ","))
	}
}

func (c *Client) tableURL(table string, opts []QueryOption) string {
	values := url.Values{}
	values.Set("select", "*")
	for _, opt := range opts {
		opt(values)
	}
	return fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, table, values.Encode())
}

// Select reads rows from a table into dest (a pointer to a slice).
func (c *Client) Select(ctx context.Context, table string, dest interface{}, opts ...QueryOption) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(c.tableURL(table, opts))
	if err != nil {
		return fmt.Errorf("select from %s: %w", table, err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("select from %s: store returned status %d: %s", table, resp.StatusCode(), string(resp.Body()))
	}
	if err := json.Unmarshal(resp.Body(), dest); err != nil {
		return fmt.Errorf("select from %s: decode response: %w", table, err)
	}
	return nil
}

// Insert appends rows to a table. rows is a struct, a map or a slice of them.
func (c *Client) Insert(ctx context.Context, table string, rows interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(rows).
		Post(c.tableURL(table, nil))
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	if resp.StatusCode() != 201 && resp.StatusCode() != 200 {
		return fmt.Errorf("insert into %s: store returned status %d: %s", table, resp.StatusCode(), string(resp.Body()))
	}
	return nil
}

// Update patches the rows matched by the options.
func (c *Client) Update(ctx context.Context, table string, patch map[string]interface{}, opts ...QueryOption) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(patch).
		Patch(c.tableURL(table, opts))
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if resp.StatusCode() != 204 && resp.StatusCode() != 200 {
		return fmt.Errorf("update %s: store returned status %d: %s", table, resp.StatusCode(), string(resp.Body()))
	}
	return nil
}

// Delete removes the rows matched by the options.
func (c *Client) Delete(ctx context.Context, table string, opts ...QueryOption) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete(c.tableURL(table, opts))
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if resp.StatusCode() != 204 && resp.StatusCode() != 200 {
		return fmt.Errorf("delete from %s: store returned status %d: %s", table, resp.StatusCode(), string(resp.Body()))
	}
	return nil
}

// AuthUser is the identity behind an opaque session token.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ValidateToken re-validates an opaque session token against the hosted auth
// endpoint and returns the user it belongs to.
func (c *Client) ValidateToken(ctx context.Context, token string) (*AuthUser, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		Get(c.baseURL + "/auth/v1/user")
	if err != nil {
		return nil, fmt.Errorf("validate token: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("validate token: auth returned status %d", resp.StatusCode())
	}

	var user AuthUser
	if err := json.Unmarshal(resp.Body(), &user); err != nil {
		return nil, fmt.Errorf("validate token: decode response: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("validate token: no user for token")
	}
	return &user, nil
}
