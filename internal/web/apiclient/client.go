// Package apiclient is the front-end's typed client for the webshop API.
package apiclient

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
	"time"

	"webshop/internal/apperr"
	"webshop/internal/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// DefaultTimeout bounds a single API call when the caller's context has no deadline.
const DefaultTimeout = 15 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the API at baseURL. A nil httpClient gets one with DefaultTimeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type accessTokenKey struct{}

// WithAccessToken returns a context whose API calls are authenticated with token.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

func accessTokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}

// Page is one page of a list endpoint.
type Page[T any] = models.ListResponse[T]

// PageQuery selects a page of a list endpoint; zero values use the API defaults.
type PageQuery struct {
	Page  int
	Limit int
}

func (p PageQuery) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	return v
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Fault   *apperr.Error   `json:"fault"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not build API request", err)
	}
	req.Header.Set("Accept", "application/json")
	if token := accessTokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return req, nil
}

// do sends a JSON request and decodes the data member of the envelope into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "could not encode API request", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "the shop API is unreachable", err).WithOp(req.Method + " " + req.URL.Path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeFault(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return apperr.Wrap(apperr.KindInternal, "malformed API response", err).WithOp(req.Method + " " + req.URL.Path)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperr.Wrap(apperr.KindInternal, "unexpected API response", err).WithOp(req.Method + " " + req.URL.Path)
	}
	return nil
}

// decodeFault rebuilds the API error from a non-2xx response. Bodies without
// a fault member fall back to the status code.
func decodeFault(resp *http.Response) error {
	var env envelope
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(raw, &env); err == nil && env.Fault != nil {
		if env.Fault.StatusCode == "" {
			env.Fault.StatusCode = strconv.Itoa(resp.StatusCode)
		}
		return env.Fault
	}
	return apperr.FromStatus(resp.StatusCode, env.Message)
}

func idPath(format string, ids ...uuid.UUID) string {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}
	return fmt.Sprintf(format, args...)
}

// IsKind reports whether err is an API error of kind.
func IsKind(err error, kind apperr.Kind) bool {
	var appErr *apperr.Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
