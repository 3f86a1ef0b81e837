package generation

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/getkin/kin-openapi/openapi3filter"
)

const (
	// DefaultBaseURL is where the generation service listens in development.
	DefaultBaseURL = "http://localhost:8080"

	// DefaultAPIPath is the endpoint that generates template content.
	DefaultAPIPath = "/api"
)

// Client calls the remote template generation service.
type Client struct {
	baseURL    string
	apiPath    string
	userAgent  string
	httpClient *http.Client
	contract   *Contract
}

// Option configures a Client.
type Option func(*Client)

// WithContract validates every request and response against c.
func WithContract(c *Contract) Option {
	return func(cl *Client) {
		cl.contract = c
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// New creates a Client for the service at baseURL. An empty apiPath falls
// back to DefaultAPIPath and a nil httpClient to http.DefaultClient.
func New(baseURL, apiPath string, httpClient *http.Client, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, fmt.Errorf("new client: %w", ErrBaseURLRequired)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("new client: parse base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("new client: base URL must include scheme and host")
	}

	apiPath = strings.TrimSpace(apiPath)
	if apiPath == "" {
		apiPath = DefaultAPIPath
	}
	if !strings.HasPrefix(apiPath, "/") {
		apiPath = "/" + apiPath
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		apiPath:    apiPath,
		httpClient: httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the full URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.baseURL + c.apiPath
}

// Generate posts req and returns the generated content. Every error it
// returns is a *RemoteGenerationFailure.
func (c *Client) Generate(ctx context.Context, req Request) (Result, error) {
	result, err := c.generate(ctx, req)
	if err != nil {
		return Result{}, failure(err)
	}
	return result, nil
}

func (c *Client) generate(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	payload, err := sonic.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrEncodeRequest, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, text/plain, */*")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	input, err := c.validateRequest(ctx, httpReq)
	if err != nil {
		return Result{}, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrReadResponse, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return Result{}, mapRequestError(resp.StatusCode, body)
	}

	if input != nil {
		if err := c.contract.ValidateResponse(ctx, input, resp.StatusCode, resp.Header, body); err != nil {
			return Result{}, err
		}
	}

	return decodeResult(resp.Header.Get("Content-Type"), body)
}

func (c *Client) validateRequest(ctx context.Context, req *http.Request) (*openapi3filter.RequestValidationInput, error) {
	if c.contract == nil {
		return nil, nil
	}
	return c.contract.ValidateRequest(ctx, req)
}

// decodeResult reads the generated content from a 2xx body. JSON bodies carry
// either a bare string or an object with a content field; anything else is
// the content itself.
func decodeResult(contentType string, body []byte) (Result, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType != "application/json" && !strings.HasSuffix(mediaType, "+json") {
		return Result{Content: string(body)}, nil
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := sonic.Unmarshal(trimmed, &s); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrDecodeResponse, err)
		}
		return Result{Content: s}, nil
	}

	var out struct {
		Content *string `json:"content"`
	}
	if err := sonic.Unmarshal(trimmed, &out); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDecodeResponse, err)
	}
	if out.Content == nil {
		return Result{}, fmt.Errorf("%w: missing content field", ErrDecodeResponse)
	}
	return Result{Content: *out.Content}, nil
}
