package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "hfharvest/pkg/errors"
	"hfharvest/pkg/logger"
)

// DefaultUserAgent identifies the harvester to the remote service
const DefaultUserAgent = "Datalifecycle/0.1"

// Client is an HTTP client for the Hugging Face datasets-server and hub
// API. One instance is constructed per process and shared by all fetch
// workers; it is safe for concurrent use once configured.
type Client struct {
	httpClient  *http.Client
	headers     map[string]string
	infoBaseURL string
	hubBaseURL  string
	logger      logger.Logger
}

// NewClient creates a new hub API client
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent": DefaultUserAgent,
			"Accept":     "application/json",
		},
		infoBaseURL: InfoBaseURL,
		hubBaseURL:  HubBaseURL,
		logger:      log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetToken sets the bearer token used for authorization
func (c *Client) SetToken(token string) {
	if token != "" {
		c.headers["Authorization"] = "Bearer " + token
	}
}

// SetBaseURLs overrides the remote endpoints, used by tests to point the
// client at a local server
func (c *Client) SetBaseURLs(infoBase, hubBase string) {
	if infoBase != "" {
		c.infoBaseURL = infoBase
	}
	if hubBase != "" {
		c.hubBaseURL = hubBase
	}
}

// DatasetInfo fetches the dataset_info object for a dataset from the
// datasets-server. All failure modes return a typed *errors.Error so the
// caller can distinguish transient from permanent outcomes.
func (c *Client) DatasetInfo(ctx context.Context, dataset string) (map[string]interface{}, error) {
	body, err := c.get(ctx, InfoURL(c.infoBaseURL, dataset))
	if err != nil {
		return nil, err
	}

	var payload struct {
		DatasetInfo map[string]interface{} `json:"dataset_info"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("malformed info response for %s: %v", dataset, err),
		}
	}

	return payload.DatasetInfo, nil
}

// DatasetTags fetches the tag list for a dataset from the hub API
func (c *Client) DatasetTags(ctx context.Context, dataset string) ([]string, error) {
	body, err := c.get(ctx, DatasetURL(c.hubBaseURL, dataset))
	if err != nil {
		return nil, err
	}

	var payload struct {
		Tags []string `json:"tags"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("malformed dataset response for %s: %v", dataset, err),
		}
	}

	return payload.Tags, nil
}

// DatasetMetadata fetches the hub metadata object for a dataset,
// expanding only the requested fields
func (c *Client) DatasetMetadata(ctx context.Context, dataset string, expand []string) (map[string]interface{}, error) {
	body, err := c.get(ctx, DatasetExpandURL(c.hubBaseURL, dataset, expand))
	if err != nil {
		return nil, err
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("malformed dataset response for %s: %v", dataset, err),
		}
	}

	return payload, nil
}

// get performs one GET request and classifies the outcome
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to build request: %v", err),
		}
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    url,
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &errs.Error{
			Type:    errs.TypeForStatusCode(resp.StatusCode),
			Message: fmt.Sprintf("unexpected status %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
		}
	}

	return body, nil
}
