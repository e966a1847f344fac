package dataservice

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

	"github.com/go-playground/validator/v10"
	"github.com/hupe1980/playback/core"
	"github.com/hupe1980/playback/logging"
)

var _ core.DataService = (*Client)(nil)

// DefaultTimeout bounds every request unless Options.Timeout overrides it.
const DefaultTimeout = 10 * time.Second

// Options configures a Client.
type Options struct {
	// HTTPClient defaults to a client with Timeout.
	HTTPClient *http.Client
	// Timeout applies when HTTPClient is nil.
	Timeout time.Duration
	// Token is sent as a bearer token when set.
	Token string
	// Logger defaults to a no-op logger.
	Logger logging.Logger
}

// Client talks to the experience data service.
type Client struct {
	baseURL  string
	http     *http.Client
	token    string
	validate *validator.Validate
	logger   logging.Logger
}

// New creates a client for the service at baseURL.
func New(baseURL string, optFns ...func(o *Options)) *Client {
	opts := Options{
		Timeout: DefaultTimeout,
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		http:     opts.HTTPClient,
		token:    opts.Token,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   opts.Logger,
	}
}

// Experiences implements core.DataService. The service may answer with a
// bare array or with {"experiences": [...]}.
func (c *Client) Experiences(ctx context.Context) core.Catalog {
	body, err := c.do(ctx, http.MethodGet, "/experiences", nil)
	if err != nil {
		return core.Catalog{Status: c.failed("experiences", err)}
	}

	var catalog core.Catalog
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &catalog.Experiences)
	} else {
		err = json.Unmarshal(body, &catalog)
	}
	if err != nil {
		return core.Catalog{Status: c.failed("experiences", fmt.Errorf("decode: %w", err))}
	}
	if err := c.validate.StructCtx(ctx, catalog); err != nil {
		return core.Catalog{Status: c.failed("experiences", fmt.Errorf("validate: %w", err))}
	}
	catalog.Status = core.Succeeded()
	return catalog
}

// Manifest implements core.DataService. A manifest without a cast array is
// failure-shaped; an empty array is valid.
func (c *Client) Manifest(ctx context.Context, experienceID string) core.Manifest {
	var m core.Manifest
	if err := c.fetch(ctx, http.MethodGet, experiencePath(experienceID, "manifest"), nil, &m); err != nil {
		return core.Manifest{Status: c.failed("manifest", err)}
	}
	m.Status = core.Succeeded()
	return m
}

// Events implements core.DataService. A nil memberInput is sent as {}.
func (c *Client) Events(ctx context.Context, experienceID string, memberInput map[string]any) core.EventBatch {
	if memberInput == nil {
		memberInput = map[string]any{}
	}
	payload, err := json.Marshal(memberInput)
	if err != nil {
		return core.EventBatch{Status: c.failed("events", fmt.Errorf("encode member input: %w", err))}
	}

	var b core.EventBatch
	if err := c.fetch(ctx, http.MethodPost, experiencePath(experienceID, "events"), payload, &b); err != nil {
		return core.EventBatch{Status: c.failed("events", err)}
	}
	b.Status = core.Succeeded()
	return b
}

// End implements core.DataService. The service answers with a bare boolean,
// with {"success": bool}, or with no body at all; the latter counts as
// success.
func (c *Client) End(ctx context.Context, experienceID string) core.EndResult {
	body, err := c.do(ctx, http.MethodDelete, experiencePath(experienceID, ""), nil)
	if err != nil {
		return core.EndResult{Status: c.failed("end", err)}
	}
	ok, err := decodeSuccess(body)
	if err != nil {
		return core.EndResult{Status: c.failed("end", fmt.Errorf("decode: %w", err))}
	}
	if !ok {
		return core.EndResult{Status: core.Failed("end rejected by data service")}
	}
	return core.EndResult{Status: core.Succeeded()}
}

func decodeSuccess(body []byte) (bool, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return true, nil
	}
	var flag bool
	if err := json.Unmarshal(body, &flag); err == nil {
		return flag, nil
	}
	var obj struct {
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal(body, &obj); err != nil {
		return false, err
	}
	return obj.Success != nil && *obj.Success, nil
}

// fetch performs a request, decodes the JSON body into out and validates it.
func (c *Client) fetch(ctx context.Context, method, path string, payload []byte, out any) error {
	body, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := c.validate.StructCtx(ctx, out); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	c.logger.Debug("dataservice.request.done", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	return body, nil
}

func (c *Client) failed(op string, err error) core.Status {
	c.logger.Warn("dataservice.request.failed", "operation", op, "error", err)
	return core.Failed(err.Error())
}

func experiencePath(id, suffix string) string {
	p := "/experiences/" + url.PathEscape(id)
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}
