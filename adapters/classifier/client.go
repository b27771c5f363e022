// Package classifier talks JSON over HTTP to the remote exoplanet model.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"time"

	"exodash/domain/candidate"
	apperrors "exodash/internal/errors"
	"exodash/ports"

	"github.com/tidwall/gjson"
)

const serviceName = "classifier"

// Client implements ports.Classifier and ports.AnalyticsSource over HTTP
type Client struct {
	config     Config
	httpClient *http.Client
}

var (
	_ ports.Classifier      = (*Client)(nil)
	_ ports.AnalyticsSource = (*Client)(nil)
)

// NewClient creates a new classifier client
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.MaxResponseBytes <= 0 {
		config.MaxResponseBytes = DefaultConfig().MaxResponseBytes
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

// prediction is the wire shape of one verdict. Batch items may carry echoed input
// fields alongside these, which are ignored.
type prediction struct {
	IsExoplanet *bool    `json:"is_exoplanet"`
	Confidence  *float64 `json:"confidence"`
	Details     string   `json:"details"`
	ModelType   string   `json:"model_type"`
}

func (p prediction) verdict() (candidate.Verdict, error) {
	if p.IsExoplanet == nil {
		return candidate.Verdict{}, fmt.Errorf("response is missing is_exoplanet")
	}
	if p.Confidence == nil {
		return candidate.Verdict{}, fmt.Errorf("response is missing confidence")
	}
	c := *p.Confidence
	if math.IsNaN(c) || c < 0 || c > 1 {
		return candidate.Verdict{}, fmt.Errorf("confidence %v outside [0, 1]", c)
	}
	return candidate.Verdict{
		IsPositive:  *p.IsExoplanet,
		Confidence:  c,
		Explanation: p.Details,
		ModelLabel:  p.ModelType,
	}, nil
}

// Classify sends one record and returns the model's verdict
func (c *Client) Classify(ctx context.Context, record candidate.Record) (candidate.Verdict, error) {
	body, err := c.do(ctx, http.MethodPost, c.config.PredictPath, record)
	if err != nil {
		return candidate.Verdict{}, err
	}

	var p prediction
	if err := json.Unmarshal(body, &p); err != nil {
		return candidate.Verdict{}, apperrors.ExternalServiceError(serviceName, fmt.Errorf("failed to parse prediction: %w", err))
	}
	v, err := p.verdict()
	if err != nil {
		return candidate.Verdict{}, apperrors.ExternalServiceError(serviceName, err)
	}
	return v, nil
}

// ClassifyBatch sends all records in one request. The response may be a bare array or
// an object wrapping it under "results" or "predictions"; either way it must hold one
// entry per record, in order.
func (c *Client) ClassifyBatch(ctx context.Context, records []candidate.Record) ([]candidate.Verdict, error) {
	body, err := c.do(ctx, http.MethodPost, c.config.BatchPath, records)
	if err != nil {
		return nil, err
	}

	results := gjson.ParseBytes(body)
	if results.IsObject() {
		for _, key := range []string{"results", "predictions"} {
			if r := results.Get(key); r.IsArray() {
				results = r
				break
			}
		}
	}
	if !results.IsArray() {
		return nil, apperrors.ExternalServiceError(serviceName, fmt.Errorf("batch response is not an array"))
	}

	var wire []prediction
	if err := json.Unmarshal([]byte(results.Raw), &wire); err != nil {
		return nil, apperrors.ExternalServiceError(serviceName, fmt.Errorf("failed to parse batch predictions: %w", err))
	}
	if len(wire) != len(records) {
		return nil, apperrors.ExternalServiceError(serviceName,
			fmt.Errorf("batch returned %d predictions for %d rows", len(wire), len(records)))
	}

	verdicts := make([]candidate.Verdict, len(wire))
	for i, p := range wire {
		v, err := p.verdict()
		if err != nil {
			msg := results.Get(fmt.Sprintf("%d.error", i)).String()
			if msg != "" {
				err = fmt.Errorf("%s", msg)
			}
			return nil, apperrors.ExternalServiceError(serviceName, fmt.Errorf("row %d: %w", i+1, err))
		}
		verdicts[i] = v
	}
	return verdicts, nil
}

// Analytics fetches the model analytics snapshot
func (c *Client) Analytics(ctx context.Context) (ports.ModelAnalytics, error) {
	body, err := c.do(ctx, http.MethodGet, c.config.AnalyticsPath, nil)
	if err != nil {
		return ports.ModelAnalytics{}, err
	}
	var a ports.ModelAnalytics
	if err := json.Unmarshal(body, &a); err != nil {
		return ports.ModelAnalytics{}, apperrors.ExternalServiceError(serviceName, fmt.Errorf("failed to parse analytics: %w", err))
	}
	a.Fallback = false
	a.FallbackVersion = ""
	return a, nil
}

// do performs one request and returns the body of a 2xx response. Transport failures
// come back as SERVICE_UNREACHABLE, HTTP failures as EXTERNAL_SERVICE_ERROR.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to marshal request")
		}
		reqBody = bytes.NewReader(data)
	}

	url := c.config.url(path)
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("request timeout after %v: %w", time.Since(start).Round(time.Millisecond), err)
		}
		log.Printf("[Classifier] %s %s failed: %v", method, url, err)
		return nil, apperrors.ServiceUnreachable(serviceName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseBytes))
	if err != nil {
		return nil, apperrors.ServiceUnreachable(serviceName, fmt.Errorf("failed to read response: %w", err))
	}

	log.Printf("[Classifier] %s %s -> %d (%d bytes, %v)", method, url, resp.StatusCode, len(body), time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.ExternalServiceError(serviceName, fmt.Errorf("status %d: %s", resp.StatusCode, errorMessage(body)))
	}
	return body, nil
}

// errorMessage extracts the server-supplied message, falling back to a body preview.
func errorMessage(body []byte) string {
	for _, path := range []string{"error", "message", "detail"} {
		if msg := gjson.GetBytes(body, path); msg.Exists() && msg.Type == gjson.String {
			return msg.String()
		}
	}
	preview := string(bytes.TrimSpace(body))
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	if preview == "" {
		return "empty response"
	}
	return preview
}
