package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdimage "image"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/oshokin/home-security/internal/logger"
)

// catLabel is the label name that counts as a cat verdict.
const catLabel = "cat"

// maxErrorBody caps how much of an error response is kept for the error message.
const maxErrorBody = 512

// errUnexpectedStatus is returned for non-2xx classifier responses.
var errUnexpectedStatus = errors.New("unexpected classifier status")

// Label is one detected label in a classifier response.
type Label struct {
	// Name is the label, e.g. "Cat" or "Person".
	Name string `json:"name"`
	// Confidence is the label confidence in percent.
	Confidence float32 `json:"confidence"`
}

// detectResponse mirrors the JSON shape returned by the classifier.
type detectResponse struct {
	Labels []Label `json:"labels"`
}

// RemoteService posts PNG-encoded frames to a label-detection endpoint.
type RemoteService struct {
	// endpoint is the classifier URL.
	endpoint string
	// client performs HTTP requests.
	client *http.Client
	// retries is the number of extra attempts on transient failures.
	retries uint64
	// initialInterval is the first backoff delay.
	initialInterval time.Duration
}

// RemoteOption configures a RemoteService.
type RemoteOption func(*RemoteService)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(s *RemoteService) {
		if client != nil {
			s.client = client
		}
	}
}

// WithRetries sets the number of extra attempts on transient failures.
func WithRetries(retries uint64) RemoteOption {
	return func(s *RemoteService) {
		s.retries = retries
	}
}

// WithInitialInterval sets the first backoff delay.
func WithInitialInterval(interval time.Duration) RemoteOption {
	return func(s *RemoteService) {
		if interval > 0 {
			s.initialInterval = interval
		}
	}
}

// NewRemoteService creates a classifier client for the given endpoint.
func NewRemoteService(endpoint string, timeout time.Duration, opts ...RemoteOption) *RemoteService {
	s := &RemoteService{
		endpoint:        endpoint,
		client:          &http.Client{Timeout: timeout},
		initialInterval: 200 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ImageContainsCat asks the classifier for labels and looks for a cat at or
// above the confidence threshold. Network errors and 5xx responses are retried.
func (s *RemoteService) ImageContainsCat(
	ctx context.Context,
	img stdimage.Image,
	confidenceThreshold float32,
) (bool, error) {
	if img == nil {
		return false, ErrImageRequired
	}

	var body bytes.Buffer
	if err := png.Encode(&body, img); err != nil {
		return false, fmt.Errorf("encode image: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.initialInterval

	var labels []Label

	err := backoff.RetryNotify(
		func() error {
			var err error

			labels, err = s.detect(ctx, body.Bytes(), confidenceThreshold)

			return err
		},
		backoff.WithContext(backoff.WithMaxRetries(bo, s.retries), ctx),
		func(err error, wait time.Duration) {
			logger.WarnKV(ctx, "Image classification failed, retrying", "error", err, "wait", wait.String())
		},
	)
	if err != nil {
		return false, fmt.Errorf("classify image: %w", err)
	}

	return ContainsCat(labels, confidenceThreshold), nil
}

// ContainsCat reports whether labels hold a cat at or above the threshold.
func ContainsCat(labels []Label, confidenceThreshold float32) bool {
	for _, label := range labels {
		if strings.EqualFold(label.Name, catLabel) && label.Confidence >= confidenceThreshold {
			return true
		}
	}

	return false
}

// detect performs one classification request.
func (s *RemoteService) detect(ctx context.Context, payload []byte, confidenceThreshold float32) ([]Label, error) {
	endpoint, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("parse endpoint: %w", err))
	}

	query := endpoint.Query()
	query.Set("min_confidence", strconv.FormatFloat(float64(confidenceThreshold), 'f', -1, 32))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}

	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err = fmt.Errorf("%w: %d %s", errUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))

		if resp.StatusCode < http.StatusInternalServerError {
			return nil, backoff.Permanent(err)
		}

		return nil, err
	}

	var decoded detectResponse
	if err = json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}

	return decoded.Labels, nil
}
