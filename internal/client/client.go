// Package client is an HTTP client for the roster API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"example.com/roster/internal/domain"
)

// ErrRosterAPI wraps every non-2xx answer from the roster API.
var ErrRosterAPI = errors.New("roster api")

// APIError carries the status and detail of a failed request.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: (HTTP Status: %d) %s", ErrRosterAPI, e.Status, e.Detail)
}

func (e *APIError) Unwrap() error { return ErrRosterAPI }

// Client talks to a roster server.
type Client struct {
	http *resty.Client
}

// New builds a Client for baseURL.
func New(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(10 * time.Second).
			SetHeader("Accept", "application/json"),
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// ListActivities returns every activity keyed by name.
func (c *Client) ListActivities(ctx context.Context) (map[domain.ActivityName]domain.Activity, error) {
	var out map[domain.ActivityName]domain.Activity
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/activities")
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	if resp.IsError() {
		return nil, toAPIError(resp)
	}
	return out, nil
}

// SignUp registers email for the named activity and returns the server message.
func (c *Client) SignUp(ctx context.Context, activity domain.ActivityName, email string) (string, error) {
	return c.mutate(ctx, resty.MethodPost, activity, email)
}

// Unregister removes email from the named activity and returns the server message.
func (c *Client) Unregister(ctx context.Context, activity domain.ActivityName, email string) (string, error) {
	return c.mutate(ctx, resty.MethodDelete, activity, email)
}

func (c *Client) mutate(ctx context.Context, method string, activity domain.ActivityName, email string) (string, error) {
	var out messageResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("activityName", string(activity)).
		SetQueryParam("email", email).
		SetResult(&out).
		Execute(method, "/activities/{activityName}/signup")
	if err != nil {
		return "", fmt.Errorf("%s signup: %w", strings.ToLower(method), err)
	}
	if resp.IsError() {
		return "", toAPIError(resp)
	}
	return out.Message, nil
}

func toAPIError(resp *resty.Response) error {
	var body errorResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil || body.Detail == "" {
		return &APIError{Status: resp.StatusCode(), Detail: strings.TrimSpace(resp.String())}
	}
	return &APIError{Status: resp.StatusCode(), Detail: body.Detail}
}
