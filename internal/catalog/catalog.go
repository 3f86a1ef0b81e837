// Package catalog reads the placeholder and template catalogs that the
// generation service publishes as MCP tools.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	// ParametersTool lists placeholders usable inside template content.
	ParametersTool = "list_template_parameters"

	// DescriptorsTool lists the names of existing templates.
	DescriptorsTool = "list_template_descriptors"

	defaultPageSize = 20
	maxPages        = 50
	initTimeout     = 30 * time.Second
)

// ErrToolFailed is returned when a catalog tool reports an error result.
var ErrToolFailed = errors.New("catalog tool failed")

// Entry is a named catalog item.
type Entry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog pages through the catalog tools of one MCP server.
type Catalog struct {
	client   client.MCPClient
	pageSize int
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithPageSize sets how many entries are requested per tool call.
func WithPageSize(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// Dial connects to a streamable HTTP MCP endpoint such as
// http://localhost:8080/mcp.
func Dial(ctx context.Context, url string, opts ...Option) (*Catalog, error) {
	c, err := client.NewStreamableHttpClient(url, transport.WithHTTPTimeout(initTimeout))
	if err != nil {
		return nil, fmt.Errorf("create catalog client: %w", err)
	}
	cat, err := Open(ctx, c, opts...)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return cat, nil
}

// Open starts and initializes c and returns a Catalog that uses it. The
// Catalog owns c from then on.
func Open(ctx context.Context, c *client.Client, opts ...Option) (*Catalog, error) {
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("start catalog client: %w", err)
	}

	initCtx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "tmplgen",
		Version: "1.0.0",
	}
	initRequest.Params.Capabilities = mcp.ClientCapabilities{}

	if _, err := c.Initialize(initCtx, initRequest); err != nil {
		return nil, fmt.Errorf("initialize catalog client: %w", err)
	}

	cat := &Catalog{client: c, pageSize: defaultPageSize}
	for _, opt := range opts {
		opt(cat)
	}
	return cat, nil
}

// Parameters returns every template parameter.
func (c *Catalog) Parameters(ctx context.Context) ([]Entry, error) {
	return c.list(ctx, ParametersTool)
}

// Descriptors returns every known template descriptor.
func (c *Catalog) Descriptors(ctx context.Context) ([]Entry, error) {
	return c.list(ctx, DescriptorsTool)
}

// Close releases the underlying MCP connection.
func (c *Catalog) Close() error {
	return c.client.Close()
}

func (c *Catalog) list(ctx context.Context, tool string) ([]Entry, error) {
	var all []Entry
	for page := range maxPages {
		entries, err := c.page(ctx, tool, page)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
		if len(entries) < c.pageSize {
			break
		}
	}
	return all, nil
}

func (c *Catalog) page(ctx context.Context, tool string, page int) ([]Entry, error) {
	result, err := c.client.CallTool(ctx, mcp.CallToolRequest{
		Request: mcp.Request{
			Method: "tools/call",
		},
		Params: mcp.CallToolParams{
			Name: tool,
			Arguments: map[string]any{
				"page": page,
				"size": c.pageSize,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("call %s page %d: %w", tool, page, err)
	}

	texts := textContents(result.Content)
	if result.IsError {
		return nil, fmt.Errorf("%w: %s: %s", ErrToolFailed, tool, strings.Join(texts, "; "))
	}

	var entries []Entry
	for _, text := range texts {
		decoded, err := decodeEntries(text)
		if err != nil {
			return nil, fmt.Errorf("decode %s page %d: %w", tool, page, err)
		}
		entries = append(entries, decoded...)
	}
	return entries, nil
}

// decodeEntries accepts either a single entry object or an array of entries.
func decodeEntries(text string) ([]Entry, error) {
	trimmed := bytes.TrimSpace([]byte(text))
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var entries []Entry
		if err := sonic.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}
	var entry Entry
	if err := sonic.Unmarshal(trimmed, &entry); err != nil {
		return nil, err
	}
	return []Entry{entry}, nil
}

func textContents(contents []mcp.Content) []string {
	var texts []string
	for _, content := range contents {
		switch tc := content.(type) {
		case mcp.TextContent:
			texts = append(texts, tc.Text)
		case *mcp.TextContent:
			texts = append(texts, tc.Text)
		}
	}
	return texts
}

// Names returns the names of entries in order.
func Names(entries []Entry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}
