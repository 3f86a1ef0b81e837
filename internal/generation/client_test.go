package generation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(server.URL, "", server.Client(), opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, server
}

func TestGenerate_sendsDraft(t *testing.T) {
	t.Parallel()

	var got Request
	var gotPath, gotMethod, gotContentType string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "Hello there!")
	})

	result, err := client.Generate(context.Background(), Request{Description: "greeting", Content: "Hi"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Content != "Hello there!" {
		t.Fatalf("content mismatch: got=%q", result.Content)
	}
	if gotMethod != http.MethodPost || gotPath != DefaultAPIPath {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
	if gotContentType != "application/json" {
		t.Fatalf("content type mismatch: got=%q", gotContentType)
	}
	if got != (Request{Description: "greeting", Content: "Hi"}) {
		t.Fatalf("payload mismatch: got=%+v", got)
	}
}

func TestGenerate_responseShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{name: "plain text", contentType: "text/plain", body: "<p>Hi</p>", want: "<p>Hi</p>"},
		{name: "html", contentType: "text/html; charset=utf-8", body: "<h2>T</h2>", want: "<h2>T</h2>"},
		{name: "json object", contentType: "application/json", body: `{"content":"<p>x</p>"}`, want: "<p>x</p>"},
		{name: "json string", contentType: "application/json", body: `"<p>y</p>"`, want: "<p>y</p>"},
		{name: "empty json content", contentType: "application/json", body: `{"content":""}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				_, _ = io.WriteString(w, tt.body)
			})

			result, err := client.Generate(context.Background(), Request{})
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			if result.Content != tt.want {
				t.Fatalf("content mismatch: got=%q want=%q", result.Content, tt.want)
			}
		})
	}
}

func TestGenerate_errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantStatus  int
		wantMessage string
		wantIs      error
	}{
		{
			name:        "json message",
			status:      http.StatusInternalServerError,
			contentType: "application/json",
			body:        `{"message":"model unavailable"}`,
			wantStatus:  500,
			wantMessage: "server returned 500: model unavailable",
		},
		{
			name:        "nested error message",
			status:      http.StatusBadGateway,
			contentType: "application/json",
			body:        `{"error":{"code":"upstream","message":"ollama timeout"}}`,
			wantStatus:  502,
			wantMessage: "server returned 502: ollama timeout",
		},
		{
			name:        "problem details title",
			status:      http.StatusBadRequest,
			contentType: "application/problem+json",
			body:        `{"title":"Bad Request","status":400}`,
			wantStatus:  400,
			wantMessage: "server returned 400: Bad Request",
		},
		{
			name:        "plain body",
			status:      http.StatusServiceUnavailable,
			contentType: "text/plain",
			body:        "  overloaded \n",
			wantStatus:  503,
			wantMessage: "server returned 503: overloaded",
		},
		{
			name:        "empty body",
			status:      http.StatusInternalServerError,
			wantStatus:  500,
			wantMessage: "server returned 500: Internal Server Error",
		},
		{
			name:        "json without message",
			status:      http.StatusNotFound,
			contentType: "application/json",
			body:        `{"code":7}`,
			wantStatus:  404,
			wantMessage: "server returned 404: Not Found",
		},
		{
			name:        "json missing content",
			status:      http.StatusOK,
			contentType: "application/json",
			body:        `{"text":"x"}`,
			wantIs:      ErrDecodeResponse,
		},
		{
			name:        "malformed json",
			status:      http.StatusOK,
			contentType: "application/json",
			body:        `{"content":`,
			wantIs:      ErrDecodeResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.Generate(context.Background(), Request{})
			if err == nil {
				t.Fatal("expected error")
			}

			var failure *RemoteGenerationFailure
			if !errors.As(err, &failure) {
				t.Fatalf("expected RemoteGenerationFailure, got %T", err)
			}
			if failure.Message != err.Error() {
				t.Fatalf("failure message mismatch: %q vs %q", failure.Message, err.Error())
			}

			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Fatalf("expected %v, got %v", tt.wantIs, err)
			}
			if tt.wantStatus != 0 {
				var reqErr *RequestError
				if !errors.As(err, &reqErr) {
					t.Fatalf("expected RequestError, got %v", err)
				}
				if reqErr.StatusCode != tt.wantStatus {
					t.Fatalf("status mismatch: got=%d want=%d", reqErr.StatusCode, tt.wantStatus)
				}
				if err.Error() != tt.wantMessage {
					t.Fatalf("message mismatch: got=%q want=%q", err.Error(), tt.wantMessage)
				}
			}
		})
	}
}

func TestGenerate_transportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := New(url, "", nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Generate(context.Background(), Request{Description: "x"})
	var failure *RemoteGenerationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected RemoteGenerationFailure, got %v", err)
	}
	if !strings.Contains(failure.Message, "request failed") {
		t.Fatalf("unexpected message %q", failure.Message)
	}
}

func TestGenerate_canceledContext(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "late")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		baseURL      string
		apiPath      string
		wantEndpoint string
		wantErr      bool
	}{
		{name: "defaults", baseURL: "http://localhost:8080", wantEndpoint: "http://localhost:8080/api"},
		{name: "trailing slash", baseURL: "http://localhost:8080/ ", apiPath: "v2/generate", wantEndpoint: "http://localhost:8080/v2/generate"},
		{name: "prefix path", baseURL: "https://example.com/tmpl", apiPath: "/api", wantEndpoint: "https://example.com/tmpl/api"},
		{name: "empty", baseURL: "  ", wantErr: true},
		{name: "no scheme", baseURL: "localhost:8080/x", wantErr: true},
		{name: "no host", baseURL: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.baseURL, tt.apiPath, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.baseURL)
				}
				return
			}
			if err != nil {
				t.Fatalf("new client: %v", err)
			}
			if got := client.Endpoint(); got != tt.wantEndpoint {
				t.Fatalf("endpoint mismatch: got=%q want=%q", got, tt.wantEndpoint)
			}
		})
	}

	if _, err := New("", "", nil); !errors.Is(err, ErrBaseURLRequired) {
		t.Fatalf("expected ErrBaseURLRequired, got %v", err)
	}
}

func TestGenerate_userAgent(t *testing.T) {
	t.Parallel()

	var got string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		_, _ = io.WriteString(w, "ok")
	}, WithUserAgent("tmplgen/test"))

	if _, err := client.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "tmplgen/test" {
		t.Fatalf("user agent mismatch: got=%q", got)
	}
}

func newContractServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}
