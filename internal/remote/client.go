package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Validator lets a response type reject a body that decoded cleanly but
// is missing required fields. JSON that merely omits a key still
// unmarshals, so zero values would otherwise pass for a success.
type Validator interface {
	Validate() error
}

// Client executes authenticated JSON requests against the Story Squad
// service and classifies the outcome. It never touches the local store or
// the credential cache.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	log        logrus.FieldLogger
}

// NewClient creates a client for the service at baseURL
func NewClient(baseURL string, timeout time.Duration, log logrus.FieldLogger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}, nil
}

// Do executes one request and decodes the 200 response body into out.
//
// The Authorization header carries the raw token and is set exactly when
// token is non-empty; Content-Type is set exactly when a body is present.
// 200 is the only success status: anything else becomes a *StatusError,
// a failure to get a response at all becomes a *TransportError, and a 200
// with a missing or undecodable body becomes ErrNoData or ErrBadDecode.
// A body that decodes but fails out's Validate is ErrBadDecode too.
func (c *Client) Do(ctx context.Context, method string, pathParts []string, body interface{}, token string, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedRequestBody, err)
		}
		reader = bytes.NewReader(encoded)
	}

	requestURL := c.baseURL.JoinPath(pathParts...)
	req, err := http.NewRequestWithContext(ctx, method, requestURL.String(), reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRequestBody, err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)

	log := c.log.WithFields(logrus.Fields{
		"method":     method,
		"url":        requestURL.String(),
		"request_id": requestID,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("request failed in transport")
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused; the body of a failed
		// request is not part of the contract
		_, _ = io.Copy(io.Discard, resp.Body)
		log.WithField("status", resp.StatusCode).Warn("unexpected status code")
		return &StatusError{Code: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithError(err).Warn("failed reading response body")
		return &TransportError{Err: err}
	}
	if len(data) == 0 {
		log.Warn("empty response body")
		return ErrNoData
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.WithError(err).Warn("undecodable response body")
		return fmt.Errorf("%w: %v", ErrBadDecode, err)
	}
	if v, ok := out.(Validator); ok {
		if err := v.Validate(); err != nil {
			log.WithError(err).Warn("response body missing required fields")
			return fmt.Errorf("%w: %v", ErrBadDecode, err)
		}
	}

	log.Debug("request completed")
	return nil
}
