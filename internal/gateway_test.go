package internal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGatewayJSONPost(t *testing.T) {
	var gotReq *http.Request
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"ok":true,"message":"listo"}`))
	}))
	defer server.Close()

	gw := NewHTTPGateway(server.URL, 5*time.Second)
	sess := &Session{IDSesion: "token-abc"}
	env, err := gw.Call(context.Background(), "api/enfoque/listar", http.MethodPost, map[string]any{"pagina": 1}, sess)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}

	if gotReq.URL.Path != "/api/enfoque/listar" {
		t.Errorf("path = %q", gotReq.URL.Path)
	}
	if gotReq.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", gotReq.Header.Get("Content-Type"))
	}
	if gotReq.Header.Get("Authorization") != "Bearer token-abc" {
		t.Errorf("Authorization = %q", gotReq.Header.Get("Authorization"))
	}
	if gotReq.Header.Get("X-Request-ID") == "" {
		t.Error("every request must carry a correlation id")
	}
	if gotReq.Header.Get("Accept") != "application/json" {
		t.Errorf("Accept = %q", gotReq.Header.Get("Accept"))
	}

	var payload map[string]any
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if payload["pagina"] != float64(1) {
		t.Errorf("body = %v", payload)
	}

	if env.OK == nil || !*env.OK || env.Message != "listo" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestGatewayGetEncodesQuery(t *testing.T) {
	var gotURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	gw := NewHTTPGateway(server.URL, 5*time.Second)
	if _, err := gw.Call(context.Background(), "api/enfoque/listar", http.MethodGet, map[string]any{"pagina": 2}, nil); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if gotURL != "/api/enfoque/listar?pagina=2" {
		t.Errorf("url = %q", gotURL)
	}
}

func TestGatewayOmitsAuthWithoutSession(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	gw := NewHTTPGateway(server.URL, 5*time.Second)
	if _, err := gw.Call(context.Background(), "api/x", http.MethodPost, nil, nil); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want none", gotAuth)
	}
}

func TestGatewayMultipart(t *testing.T) {
	var gotFields map[string]string
	var gotFileName, gotFileBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("not a multipart request: %v", err)
			w.Write([]byte(`{}`))
			return
		}
		gotFields = make(map[string]string)
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				gotFields[k] = v[0]
			}
		}
		if files := r.MultipartForm.File["archivo"]; len(files) > 0 {
			gotFileName = files[0].Filename
			f, _ := files[0].Open()
			data, _ := io.ReadAll(f)
			f.Close()
			gotFileBody = string(data)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	gw := NewHTTPGateway(server.URL, 5*time.Second)
	file := &FileAttachment{Name: "img.png", ContentType: "image/png", Data: []byte("png-data")}
	_, err := gw.CallMultipart(context.Background(), "api/enfoque/crear_archivo",
		map[string]string{"nombre": "Con imagen"}, file, &Session{IDSesion: "tok"})
	if err != nil {
		t.Fatalf("CallMultipart() error = %v", err)
	}

	if gotFields["nombre"] != "Con imagen" {
		t.Errorf("fields = %v", gotFields)
	}
	// An attachment without an explicit field name lands under "archivo".
	if gotFileName != "img.png" || gotFileBody != "png-data" {
		t.Errorf("file = %q %q", gotFileName, gotFileBody)
	}
}

func TestGatewayNon2xxIsGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	gw := NewHTTPGateway(server.URL, 5*time.Second)
	_, err := gw.Call(context.Background(), "api/x", http.MethodPost, nil, nil)
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("Call() = %v, want GatewayError", err)
	}
	if gwErr.Op != "send" {
		t.Errorf("Op = %q", gwErr.Op)
	}
}

func TestGatewayBadJSONIsDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	gw := NewHTTPGateway(server.URL, 5*time.Second)
	_, err := gw.Call(context.Background(), "api/x", http.MethodPost, nil, nil)
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("Call() = %v, want GatewayError", err)
	}
	if gwErr.Op != "decode" {
		t.Errorf("Op = %q", gwErr.Op)
	}
}

func TestGatewayContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	gw := NewHTTPGateway(server.URL, 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := gw.Call(ctx, "api/x", http.MethodPost, nil, nil); err == nil {
		t.Fatal("Call() with a canceled context must fail")
	}
}

func TestTruncateBody(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	if got := truncateBody(long); len(got) != 203 {
		t.Errorf("truncateBody() length = %d, want 203", len(got))
	}
	if got := truncateBody([]byte("corto")); got != "corto" {
		t.Errorf("truncateBody() = %q", got)
	}
}
