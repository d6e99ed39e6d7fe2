package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/smakfood/smakbot/core/config"
	"github.com/smakfood/smakbot/core/logger"
	"github.com/smakfood/smakbot/internal/metrics"
)

const maxErrorBody = 512

// Client is the HTTP client for the remote catalog API. All calls attach the
// opaque bearer credential from config and a generated request id.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a catalog client from the validated config section.
func NewClient(cfg config.CatalogConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// do performs one API call. Every failure comes back as a *RemoteError; a 404
// additionally wraps ErrNotFound.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + "/" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return remoteErr(op, 0, fmt.Errorf("marshal request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return remoteErr(op, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.CountCatalogCall(op, 0)
		logger.Warn(ctx, "catalog", "call.fail",
			slog.String("handler", op),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return remoteErr(op, 0, err)
	}
	defer resp.Body.Close()

	metrics.CountCatalogCall(op, resp.StatusCode)
	logger.Debug(ctx, "catalog", "call",
		slog.String("handler", op),
		slog.Int("http_code", resp.StatusCode),
		slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return remoteErr(op, resp.StatusCode, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return remoteErr(op, resp.StatusCode, errors.New(string(msg)))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return remoteErr(op, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func listQuery(page, limit int, filters map[string]string) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	for k, v := range filters {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}
