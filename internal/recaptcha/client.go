package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/feedback-api/pkg/logging"
)

const (
	// DefaultVerifyURL is Google's siteverify endpoint.
	DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 64 << 10
)

var tracer = otel.Tracer("feedback.internal.recaptcha")

// Config controls how the verification client behaves.
type Config struct {
	Secret     string
	VerifyURL  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Client verifies challenge tokens against the reCAPTCHA siteverify API.
type Client struct {
	secret     string
	verifyURL  string
	httpClient *http.Client
	logger     *logging.Logger
}

type verifyResponse struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// New creates a Client with defaults filled in. An empty secret is allowed;
// such a client rejects every token.
func New(cfg Config) *Client {
	verifyURL := strings.TrimSpace(cfg.VerifyURL)
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		secret:     strings.TrimSpace(cfg.Secret),
		verifyURL:  verifyURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Verify reports whether the provider affirmatively accepted token. Every
// failure, including transport errors and ctx cancellation, yields false.
// No retries are attempted.
func (c *Client) Verify(ctx context.Context, token string) bool {
	ctx, span := tracer.Start(ctx, "recaptcha.verify", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if strings.TrimSpace(token) == "" {
		span.SetAttributes(attribute.String("recaptcha.reject_reason", "blank_token"))
		return false
	}
	if c.secret == "" {
		c.logger.Warn("recaptcha secret not configured; rejecting token")
		span.SetAttributes(attribute.String("recaptcha.reject_reason", "no_secret"))
		return false
	}

	resp, err := c.post(ctx, token)
	if err != nil {
		c.logger.Warn("recaptcha verification failed", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "verify request failed")
		return false
	}
	span.SetAttributes(
		attribute.Bool("recaptcha.success", resp.Success),
		attribute.String("recaptcha.hostname", resp.Hostname),
	)
	if !resp.Success {
		c.logger.Info("recaptcha token rejected", "error_codes", resp.ErrorCodes, "hostname", resp.Hostname)
		return false
	}
	return true
}

func (c *Client) post(ctx context.Context, token string) (*verifyResponse, error) {
	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("recaptcha: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recaptcha: http error: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(httpResp.Body, maxResponseBytes))
		return nil, fmt.Errorf("recaptcha: unexpected status %d", httpResp.StatusCode)
	}

	var payload verifyResponse
	if err := json.NewDecoder(io.LimitReader(httpResp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("recaptcha: decode response: %w", err)
	}
	return &payload, nil
}
