package outbox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrSubjectNotFound is returned when the registry has no version for a subject.
var ErrSubjectNotFound = errors.New("schema subject not found")

// SchemaRegistryClient provides minimal interactions with Confluent Schema Registry.
type SchemaRegistryClient struct {
	client *resty.Client
}

// NewSchemaRegistryClient constructs a client with sane defaults.
func NewSchemaRegistryClient(baseURL string) *SchemaRegistryClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/vnd.schemaregistry.v1+json")
	return &SchemaRegistryClient{client: client}
}

type schemaIDResponse struct {
	ID int `json:"id"`
}

// EnsureSchema returns the latest schema id for subject, registering schema
// when the subject does not exist yet.
func (c *SchemaRegistryClient) EnsureSchema(ctx context.Context, subject string, schema string) (int, error) {
	if id, err := c.fetchLatest(ctx, subject); err == nil {
		return id, nil
	}
	return c.register(ctx, subject, schema)
}

func (c *SchemaRegistryClient) fetchLatest(ctx context.Context, subject string) (int, error) {
	var payload schemaIDResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("subject", subject).
		SetResult(&payload).
		Get("/subjects/{subject}/versions/latest")
	if err != nil {
		return 0, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return 0, ErrSubjectNotFound
	}
	if resp.IsError() {
		return 0, fmt.Errorf("schema registry error: %s", resp.String())
	}
	return payload.ID, nil
}

func (c *SchemaRegistryClient) register(ctx context.Context, subject string, schema string) (int, error) {
	var payload schemaIDResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("subject", subject).
		SetHeader("Content-Type", "application/vnd.schemaregistry.v1+json").
		SetBody(map[string]any{
			"schemaType": "JSON",
			"schema":     schema,
		}).
		SetResult(&payload).
		Post("/subjects/{subject}/versions")
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, fmt.Errorf("schema registry register error: %s", resp.String())
	}
	return payload.ID, nil
}

// StaticRegistry hands out a fixed schema id. It is used when no registry URL
// is configured.
type StaticRegistry struct {
	ID int
}

// EnsureSchema returns the configured id.
func (r StaticRegistry) EnsureSchema(context.Context, string, string) (int, error) {
	return r.ID, nil
}
