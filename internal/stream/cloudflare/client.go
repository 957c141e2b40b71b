package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/irah1999/cloud-flair/internal/metrics"
	"github.com/irah1999/cloud-flair/internal/stream"

	"golang.org/x/time/rate"
)

const providerName = "cloudflare"

// Client talks to the Cloudflare Stream live input API.
type Client struct {
	config  *Config
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, &stream.ProviderError{
			Provider: providerName,
			Code:     stream.ErrCodeRejected,
			Message:  "invalid configuration",
			Err:      err,
		}
	}

	burst := int(config.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		config:  config,
		http:    &http.Client{Timeout: config.Timeout},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst),
	}, nil
}

func (c *Client) GetProviderName() string {
	return providerName
}

type apiMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Success bool            `json:"success"`
	Errors  []apiMessage    `json:"errors"`
	Result  json.RawMessage `json:"result"`
}

type urlField struct {
	URL string `json:"url"`
}

type liveInputResult struct {
	UID            string    `json:"uid"`
	WebRTC         *urlField `json:"webRTC"`
	WebRTCPlayback *urlField `json:"webRTCPlayback"`
	RTMPS          *struct {
		StreamKey string `json:"streamKey"`
	} `json:"rtmps"`
}

type createLiveInputBody struct {
	Meta      map[string]string `json:"meta"`
	Enabled   bool              `json:"enabled"`
	Recording *recordingBody    `json:"recording,omitempty"`
}

type recordingBody struct {
	Mode string `json:"mode"`
}

// CreateLiveInput creates a WebRTC-capable live input. Missing publish or
// playback URLs are returned as empty strings for the caller to judge.
func (c *Client) CreateLiveInput(ctx context.Context, params stream.LiveInputParams) (*stream.LiveInput, error) {
	body := createLiveInputBody{
		Meta:    map[string]string{"name": params.Name},
		Enabled: true,
	}
	if params.AutoRecording {
		body.Recording = &recordingBody{Mode: "automatic"}
	}

	var result liveInputResult
	if err := c.do(ctx, "create_live_input", http.MethodPost, c.accountPath("stream", "live_inputs"), body, &result); err != nil {
		return nil, err
	}

	input := &stream.LiveInput{UID: result.UID}
	if result.WebRTC != nil {
		input.PublishURL = result.WebRTC.URL
	}
	if result.WebRTCPlayback != nil {
		input.PlaybackURL = result.WebRTCPlayback.URL
	}
	if result.RTMPS != nil {
		input.StreamKey = result.RTMPS.StreamKey
	}
	return input, nil
}

// ListRecordings returns the videos recorded from a live input in the order
// Cloudflare reports them.
func (c *Client) ListRecordings(ctx context.Context, liveInputID string) ([]stream.Recording, error) {
	endpoint := c.accountPath("stream") + "?liveInput=" + url.QueryEscape(liveInputID)

	var result []struct {
		UID string `json:"uid"`
	}
	if err := c.do(ctx, "list_recordings", http.MethodGet, endpoint, nil, &result); err != nil {
		return nil, err
	}

	recordings := make([]stream.Recording, 0, len(result))
	for _, r := range result {
		recordings = append(recordings, stream.Recording{UID: r.UID})
	}
	return recordings, nil
}

// SetLiveInputEnabled toggles a live input. Disabling drops any connected publisher.
func (c *Client) SetLiveInputEnabled(ctx context.Context, liveInputID string, enabled bool) error {
	body := map[string]bool{"enabled": enabled}
	return c.do(ctx, "toggle_live_input", http.MethodPut, c.accountPath("stream", "live_inputs", liveInputID), body, nil)
}

func (c *Client) DeleteLiveInput(ctx context.Context, liveInputID string) error {
	return c.do(ctx, "delete_live_input", http.MethodDelete, c.accountPath("stream", "live_inputs", liveInputID), nil, nil)
}

func (c *Client) accountPath(parts ...string) string {
	escaped := make([]string, 0, len(parts)+2)
	escaped = append(escaped, "accounts", url.PathEscape(c.config.AccountID))
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	return strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.Join(escaped, "/")
}

func (c *Client) do(ctx context.Context, operation, method, endpoint string, payload any, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveProviderCall(providerName, operation, err, time.Since(start))
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return c.unavailable("rate limiter wait aborted", err)
	}

	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", operation, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return c.unavailable("request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.unavailable("reading response failed", err)
	}

	if len(bytes.TrimSpace(body)) == 0 && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode >= http.StatusInternalServerError {
			return c.unavailable(fmt.Sprintf("http %d", resp.StatusCode), err)
		}
		return &stream.ProviderError{
			Provider: providerName,
			Code:     stream.ErrCodeInvalidResponse,
			Message:  fmt.Sprintf("undecodable %s response (http %d)", operation, resp.StatusCode),
			Err:      err,
		}
	}

	if !env.Success {
		msg := "Unknown Error"
		if len(env.Errors) > 0 && env.Errors[0].Message != "" {
			msg = env.Errors[0].Message
		}
		return &stream.ProviderError{
			Provider: providerName,
			Code:     stream.ErrCodeRejected,
			Message:  msg,
		}
	}

	if out == nil || len(env.Result) == 0 || string(env.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return &stream.ProviderError{
			Provider: providerName,
			Code:     stream.ErrCodeInvalidResponse,
			Message:  "unexpected " + operation + " result shape",
			Err:      err,
		}
	}
	return nil
}

func (c *Client) unavailable(msg string, err error) error {
	return &stream.ProviderError{
		Provider: providerName,
		Code:     stream.ErrCodeUnavailable,
		Message:  msg,
		Err:      err,
	}
}
