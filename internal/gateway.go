package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Envelope is the loosely-typed backend response. Some endpoints wrap
// results in rows, others return the payload directly; Raw preserves the
// full decoded document so callers can probe either shape.
type Envelope struct {
	OK      *bool
	Message string
	Rows    []map[string]any
	Raw     map[string]any
}

// UnmarshalJSON decodes defensively: any field may be absent or carry an
// unexpected type without failing the whole decode.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Raw = raw

	if ok, found := raw["ok"].(bool); found {
		e.OK = &ok
	}
	if msg, found := raw["message"].(string); found {
		e.Message = msg
	}
	if rows, found := raw["rows"].([]any); found {
		for _, r := range rows {
			if m, isMap := r.(map[string]any); isMap {
				e.Rows = append(e.Rows, m)
			}
		}
	}
	return nil
}

// FirstRow returns the first row of the envelope, or nil
func (e *Envelope) FirstRow() map[string]any {
	if e == nil || len(e.Rows) == 0 {
		return nil
	}
	return e.Rows[0]
}

// Gateway is the remote-call contract every client depends on. Implementations
// must return a decoded Envelope on HTTP success and an error otherwise.
type Gateway interface {
	Call(ctx context.Context, endpoint, method string, payload map[string]any, sess *Session) (*Envelope, error)
	CallMultipart(ctx context.Context, endpoint string, fields map[string]string, file *FileAttachment, sess *Session) (*Envelope, error)
}

// HTTPGateway implements Gateway over net/http
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway creates a gateway against the given backend base URL
func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Call performs a JSON request. GET payloads are encoded as query
// parameters; other methods send a JSON body.
func (g *HTTPGateway) Call(ctx context.Context, endpoint, method string, payload map[string]any, sess *Session) (*Envelope, error) {
	target := g.baseURL + "/" + strings.TrimLeft(endpoint, "/")

	var body io.Reader
	if method == http.MethodGet {
		if len(payload) > 0 {
			q := url.Values{}
			for k, v := range payload {
				q.Set(k, fmt.Sprintf("%v", v))
			}
			target += "?" + q.Encode()
		}
	} else {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &GatewayError{Endpoint: endpoint, Op: "request", Err: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &GatewayError{Endpoint: endpoint, Op: "request", Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	g.setCommonHeaders(req, sess)

	return g.send(req, endpoint)
}

// CallMultipart performs a POST with a multipart body carrying form fields
// plus one file attachment.
func (g *HTTPGateway) CallMultipart(ctx context.Context, endpoint string, fields map[string]string, file *FileAttachment, sess *Session) (*Envelope, error) {
	target := g.baseURL + "/" + strings.TrimLeft(endpoint, "/")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, &GatewayError{Endpoint: endpoint, Op: "request", Err: err}
		}
	}
	if file != nil {
		field := file.Field
		if field == "" {
			field = "archivo"
		}
		part, err := writer.CreateFormFile(field, file.Name)
		if err != nil {
			return nil, &GatewayError{Endpoint: endpoint, Op: "request", Err: err}
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, &GatewayError{Endpoint: endpoint, Op: "request", Err: err}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, &GatewayError{Endpoint: endpoint, Op: "request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, &buf)
	if err != nil {
		return nil, &GatewayError{Endpoint: endpoint, Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	g.setCommonHeaders(req, sess)

	return g.send(req, endpoint)
}

func (g *HTTPGateway) setCommonHeaders(req *http.Request, sess *Session) {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if sess != nil && sess.IDSesion != "" {
		req.Header.Set("Authorization", "Bearer "+sess.IDSesion)
	}
	LogDebug("gateway %s %s request_id=%s", req.Method, req.URL.Path, requestID)
}

func (g *HTTPGateway) send(req *http.Request, endpoint string) (*Envelope, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &GatewayError{Endpoint: endpoint, Op: "send", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GatewayError{Endpoint: endpoint, Op: "decode", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GatewayError{
			Endpoint: endpoint,
			Op:       "send",
			Err:      fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncateBody(data)),
		}
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &GatewayError{Endpoint: endpoint, Op: "decode", Err: err}
	}
	return &env, nil
}

func truncateBody(data []byte) string {
	const max = 200
	s := string(data)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
