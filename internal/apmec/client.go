package apmec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/pineunity/apmec-horizon/internal/config"
	"github.com/pineunity/apmec-horizon/internal/telemetry"
	"github.com/pineunity/apmec-horizon/pkg/logging"
)

// APIVersion is the path prefix of the orchestration API.
const APIVersion = "v1.0"

// Client talks to the MEC orchestration REST API.
type Client struct {
	mu         sync.RWMutex
	httpclient *http.Client
	api        string
}

// NewClient creates a client for the given orchestrator configuration.
func NewClient(cfg config.OrchestratorConfig) (*Client, error) {
	c := &Client{}
	if err := c.Update(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// Update swaps endpoint, credentials and TLS settings. Requests already in
// flight complete with the previous settings.
func (c *Client) Update(cfg config.OrchestratorConfig) error {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return fmt.Errorf("orchestrator endpoint is not configured")
	}
	hc, err := newHTTPClient(cfg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.httpclient = hc
	c.api = strings.TrimSuffix(cfg.Endpoint, "/")
	return nil
}

// Endpoint returns the configured API base URL.
func (c *Client) Endpoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.api
}

func (c *Client) snapshot() (*http.Client, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.httpclient, c.api
}

// build URL with path
func apipath(api string, path ...string) string {
	parts := []string{api, APIVersion}
	for _, p := range path {
		parts = append(parts, url.PathEscape(strings.Trim(p, "/")))
	}
	return strings.Join(parts, "/")
}

// List returns the resources of kind matching filters, in server order.
//
// The response must be a {"<plural>": [...]} envelope. Elements that are not
// JSON objects are returned as empty records so the caller can skip them
// without losing the rest of the batch.
//
// Parameters:
//   - ctx: Context for the request
//   - kind: Resource kind; its plural names the collection and envelope key
//   - filters: Sent as query parameters, may be nil
//
// Returns:
//   - []Record: The listed resources, one per array element
//   - error: *NotFoundError, *StatusError, *TransportError or *DecodeError
func (c *Client) List(ctx context.Context, kind Kind, filters map[string]string) ([]Record, error) {
	logging.Debug("APMEC", "%s_list(): params=%v", kind, filters)

	var envelope map[string]json.RawMessage
	op := string(kind) + "_list"
	if err := c.do(ctx, op, kind, "", http.MethodGet, filters, nil, &envelope); err != nil {
		return nil, err
	}

	raw, ok := envelope[kind.Plural()]
	if !ok {
		return nil, &DecodeError{Op: op, Err: fmt.Errorf("response has no %q key", kind.Plural())}
	}
	var elements []json.RawMessage
	if err := decodeJSON(raw, &elements); err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}

	records := make([]Record, 0, len(elements))
	for i, element := range elements {
		var rec Record
		if err := decodeJSON(element, &rec); err != nil {
			// Keep the slot so the caller counts it as a record without an id.
			logging.Debug("APMEC", "%s(): element %d is not an object: %v", op, i, err)
			rec = Record{}
		}
		records = append(records, rec)
	}
	return records, nil
}

// Show returns a single resource.
func (c *Client) Show(ctx context.Context, kind Kind, id string) (Record, error) {
	logging.Debug("APMEC", "%s_get(): %s_id=%s", kind, kind, id)

	op := string(kind) + "_get"
	var envelope map[string]json.RawMessage
	if err := c.do(ctx, op, kind, id, http.MethodGet, nil, nil, &envelope); err != nil {
		return nil, err
	}
	return unwrapSingle(op, kind, envelope)
}

// Create posts body, which must already carry the {"<kind>": {...}} envelope,
// and returns the created resource.
func (c *Client) Create(ctx context.Context, kind Kind, body map[string]any) (Record, error) {
	logging.Debug("APMEC", "create_%s(): arg=%v", kind, body)

	op := "create_" + string(kind)
	var envelope map[string]json.RawMessage
	if err := c.do(ctx, op, kind, "", http.MethodPost, nil, body, &envelope); err != nil {
		return nil, err
	}
	return unwrapSingle(op, kind, envelope)
}

// Delete removes a resource.
func (c *Client) Delete(ctx context.Context, kind Kind, id string) error {
	logging.Debug("APMEC", "delete_%s(): %s_id=%s", kind, kind, id)
	return c.do(ctx, "delete_"+string(kind), kind, id, http.MethodDelete, nil, nil, nil)
}

// ListEvents returns the lifecycle events recorded for a resource.
func (c *Client) ListEvents(ctx context.Context, resourceID string) ([]Record, error) {
	events, err := c.List(ctx, KindEvent, map[string]string{"resource_id": resourceID})
	if err != nil {
		return nil, err
	}
	logging.Debug("APMEC", "events_list(): resource_id=%s l=%d", resourceID, len(events))
	return events, nil
}

func unwrapSingle(op string, kind Kind, envelope map[string]json.RawMessage) (Record, error) {
	raw, ok := envelope[kind.Singular()]
	if !ok {
		return nil, &DecodeError{Op: op, Err: fmt.Errorf("response has no %q key", kind.Singular())}
	}
	var rec Record
	if err := decodeJSON(raw, &rec); err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	if rec == nil {
		return nil, &DecodeError{Op: op, Err: fmt.Errorf("%q is null", kind.Singular())}
	}
	return rec, nil
}

func decodeJSON(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

// do performs one API call. id is empty for collection calls. out may be nil
// when the response body is not needed.
func (c *Client) do(ctx context.Context, op string, kind Kind, id, method string, query map[string]string, body any, out any) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "apmec."+op)
	span.SetAttributes(telemetry.KindAttr(string(kind)), attribute.String("http.method", method))
	defer func() { telemetry.EndSpan(span, err) }()

	hc, api := c.snapshot()

	path := []string{kind.Plural()}
	if id != "" {
		path = append(path, id)
	}
	target := apipath(api, path...)
	if len(query) > 0 {
		values := url.Values{}
		for k, v := range query {
			values.Set(k, v)
		}
		target += "?" + values.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return &TransportError{Op: op, Endpoint: api, Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if StatusCodeRangeOf(resp.StatusCode) == Status2xx {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			io.Copy(io.Discard, resp.Body)
			return nil
		}
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return &TransportError{Op: op, Endpoint: api, Err: err}
		}
		if err := decodeJSON(raw, out); err != nil {
			return &DecodeError{Op: op, Err: err}
		}
		return nil
	}

	raw, _ := io.ReadAll(resp.Body)
	message := parseErrorMessage(raw)

	if resp.StatusCode == http.StatusNotFound {
		return &NotFoundError{Kind: kind, ID: id, Message: message}
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: message, Body: string(raw)}
}

// parseErrorMessage extracts the human readable message from the error
// envelopes the API uses: {"message": "..."}, {"error": {"message": "..."}}
// or {"<ExceptionName>": {"message": "..."}}.
func parseErrorMessage(body []byte) string {
	var envelope map[string]any
	if err := json.Unmarshal(body, &envelope); err != nil {
		return strings.TrimSpace(string(body))
	}
	if msg, ok := envelope["message"].(string); ok {
		return msg
	}
	for _, v := range envelope {
		if inner, ok := v.(map[string]any); ok {
			if msg, ok := inner["message"].(string); ok {
				return msg
			}
		}
	}
	return ""
}
