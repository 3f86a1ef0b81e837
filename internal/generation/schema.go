package generation

import (
	"context"
	"fmt"
	"net/http"

	_ "embed"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

//go:embed api/message-template.yaml
var schemaYAML []byte

// Schema returns the embedded OpenAPI document describing the generation
// endpoint.
func Schema() []byte {
	return schemaYAML
}

// LoadSchema parses and validates the embedded OpenAPI document.
func LoadSchema(ctx context.Context) (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(schemaYAML)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate schema: %w", err)
	}
	return doc, nil
}

// Contract checks requests and responses against the OpenAPI document.
type Contract struct {
	router routers.Router
}

// NewContract builds a Contract whose server list points at baseURL, so
// requests made by a Client with the same base URL can be routed.
func NewContract(ctx context.Context, baseURL string) (*Contract, error) {
	doc, err := LoadSchema(ctx)
	if err != nil {
		return nil, err
	}
	doc.Servers = openapi3.Servers{{URL: baseURL}}

	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build schema router: %w", err)
	}
	return &Contract{router: router}, nil
}

// ValidateRequest checks an outgoing request. The request body is restored
// after validation. The returned input is needed by ValidateResponse.
func (c *Contract) ValidateRequest(ctx context.Context, req *http.Request) (*openapi3filter.RequestValidationInput, error) {
	route, params, err := c.router.FindRoute(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContract, err)
	}
	input := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: params,
		Route:      route,
	}
	if err := openapi3filter.ValidateRequest(ctx, input); err != nil {
		return nil, fmt.Errorf("%w: request: %v", ErrContract, err)
	}
	return input, nil
}

// ValidateResponse checks a successful response body.
func (c *Contract) ValidateResponse(ctx context.Context, input *openapi3filter.RequestValidationInput, status int, header http.Header, body []byte) error {
	resp := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: input,
		Status:                 status,
		Header:                 header,
	}
	resp.SetBodyBytes(body)
	if err := openapi3filter.ValidateResponse(ctx, resp); err != nil {
		return fmt.Errorf("%w: response: %v", ErrContract, err)
	}
	return nil
}
