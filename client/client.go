// Package client is the registrant-side counterpart of the HTTP API: payment orders, verification,
// free registrations, status polling and ticket export.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"event-ticket/common/otel"
	"event-ticket/model"
	"fmt"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"io"
	"net/http"
	"strings"
	"time"
)

// TokenSource returns the current bearer token of the signed-in registrant.
type TokenSource func(ctx context.Context) (string, error)

type Client struct {
	baseURL string
	token   TokenSource
	hc      *http.Client
}

func New(baseURL string, token TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		hc:      &http.Client{Timeout: timeout},
	}
}

// apiError is a non-2xx answer that carried the server's error body.
type apiError struct {
	Status  int
	Message string
	Data    json.RawMessage
}

func (e *apiError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// fields decodes the per-field validation data, if any.
func (e *apiError) fields() map[string]string {
	if len(e.Data) == 0 {
		return nil
	}
	var out map[string]string
	if err := json.Unmarshal(e.Data, &out); err != nil {
		return nil
	}
	return out
}

func (e *apiError) validation() *ValidationError {
	return &ValidationError{Message: e.Message, Fields: e.fields()}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	ctx, span := otel.Tracer.Start(ctx, "client.do", trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	))
	defer span.End()

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("do: json.Marshal: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("do: http.NewRequest: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return fmt.Errorf("do: token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("do: http.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		apiErr := &apiError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

		var errResp struct {
			Error string          `json:"error"`
			Data  json.RawMessage `json:"data"`
		}
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
			apiErr.Data = errResp.Data
		}
		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("do: json.Decode: %w", err)
	}

	return nil
}

func asAPIError(err error) (*apiError, bool) {
	var apiErr *apiError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

func (c *Client) registrations(ctx context.Context) ([]model.Registration, error) {
	var regs []model.Registration
	if err := c.do(ctx, http.MethodGet, "/api/my-registrations", nil, &regs); err != nil {
		return nil, err
	}
	return regs, nil
}
