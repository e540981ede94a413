package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"ad-reporting/internal/config"
)

type HTTPClient struct {
	client        *http.Client
	retryAttempts int
	backoffUnit   time.Duration
	logger        *logrus.Logger
}

func NewHTTPClient(cfg *config.Config, logger *logrus.Logger) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		retryAttempts: cfg.RetryAttempts,
		backoffUnit:   time.Second,
		logger:        logger,
	}
}

// WithBackoffUnit sets the base of the quadratic retry backoff.
func (c *HTTPClient) WithBackoffUnit(d time.Duration) *HTTPClient {
	c.backoffUnit = d
	return c
}

// PostSigned sends an already encoded JSON body. 4xx responses are not
// retried; transport errors and 5xx are.
func (c *HTTPClient) PostSigned(ctx context.Context, url string, body []byte, signature string) error {
	attempts := c.retryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoffTime := time.Duration(attempt*attempt) * c.backoffUnit
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt + 1,
				"backoff": backoffTime,
				"url":     url,
			}).Warn("Retrying request after backoff")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoffTime):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if signature != "" {
			req.Header.Set("X-Signature", signature)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			c.logger.WithFields(logrus.Fields{
				"attempt":     attempt + 1,
				"status_code": resp.StatusCode,
				"url":         url,
			}).Info("Request successful")
			return nil
		}

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return fmt.Errorf("client error: %d", resp.StatusCode)
		}

		lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
	}

	return fmt.Errorf("all retry attempts failed, last error: %w", lastErr)
}
