// Package httpfs is the HTTP client for the remote per-user file store.
//
// Wire protocol:
//
//	POST   {base}/event            form email, password          sign up
//	POST   {base}/signin           json {email,password,rememberMe} -> {"token"}
//	PUT    {base}/files/{path}     raw body                      upload
//	DELETE {base}/files/{path}                                   delete path and children
//	GET    {base}/files/items                                    json array of items
//
// File requests authenticate with HTTP basic auth using the account email and
// password.
package httpfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/colonyops/shoplist/internal/core/fsio"
	"github.com/colonyops/shoplist/internal/core/grocery"
	"github.com/colonyops/shoplist/internal/core/logging"
	"github.com/rs/zerolog"
)

const maxErrorBody = 512

// StatusError reports a non-2xx response.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Code, http.StatusText(e.Code))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Unwrap maps authentication failures onto fsio.ErrUnauthorized.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden {
		return fsio.ErrUnauthorized
	}
	return nil
}

// Client implements fsio.Remote over HTTP.
type Client struct {
	base *url.URL
	http *http.Client
	log  zerolog.Logger
}

var _ fsio.Remote = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New returns a Client rooted at baseURL.
func New(baseURL string, log zerolog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse remote url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		base: u,
		http: http.DefaultClient,
		log:  logging.For(log, "httpfs"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string) error {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	req, err := c.request(ctx, http.MethodPost, "/event", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	return c.do(req, nil)
}

type signInRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type signInResponse struct {
	Token string `json:"token"`
}

func (c *Client) SignIn(ctx context.Context, email, password string, rememberMe bool) (fsio.Token, error) {
	body, err := json.Marshal(signInRequest{Email: email, Password: password, RememberMe: rememberMe})
	if err != nil {
		return "", fmt.Errorf("encode sign in: %w", err)
	}

	req, err := c.request(ctx, http.MethodPost, "/signin", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp signInResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return fsio.Token(resp.Token), nil
}

func (c *Client) UploadFile(ctx context.Context, email, password, path string, content []byte) error {
	req, err := c.request(ctx, http.MethodPut, filePath(path), bytes.NewReader(content))
	if err != nil {
		return err
	}
	req.SetBasicAuth(email, password)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, nil)
}

func (c *Client) DeleteFile(ctx context.Context, email, password, path string) error {
	req, err := c.request(ctx, http.MethodDelete, filePath(path), nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(email, password)

	return c.do(req, nil)
}

func (c *Client) DownloadFileList(ctx context.Context, email, password string) ([]grocery.Item, error) {
	req, err := c.request(ctx, http.MethodGet, filePath(fsio.ItemsPath), nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(email, password)
	req.Header.Set("Accept", "application/json")

	var items []grocery.Item
	if err := c.do(req, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func filePath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return "/files/" + strings.Join(parts, "/")
}

func (c *Client) request(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	target := c.base.String() + path
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	return req, nil
}

// do sends req and decodes a JSON body into out when out is non-nil.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Msg("remote request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method: req.Method,
			URL:    req.URL.Path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(data)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s %s: decode response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
