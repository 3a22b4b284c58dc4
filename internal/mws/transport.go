package mws

import (
	"context"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"amazonpay/internal/pkg/httpclient"
	"amazonpay/internal/pkg/metrics"
	"amazonpay/internal/sanitize"
)

const (
	SDKName    = "amazon-pay-sdk-go"
	SDKVersion = "1.0.0"

	// MaxAttempts is the initial attempt plus three retries.
	MaxAttempts = 4
)

// BackoffSeconds returns the wait after the given failed attempt (1-based).
func BackoffSeconds(attempt int) int {
	switch attempt {
	case 1:
		return 1
	case 2:
		return 4
	case 3:
		return 10
	default:
		return 0
	}
}

// UserAgent renders the User-Agent header sent with every request.
func UserAgent(appName, appVersion string) string {
	parts := make([]string, 0, 3)
	switch {
	case appName != "" && appVersion != "":
		parts = append(parts, appName+"/"+appVersion)
	case appName != "":
		parts = append(parts, appName)
	case appVersion != "":
		parts = append(parts, appVersion)
	}
	parts = append(parts, runtime.Version(), runtime.GOOS+"/"+runtime.GOARCH)
	return SDKName + "/" + SDKVersion + "; (" + strings.Join(parts, "; ") + ")"
}

type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeRetryable
	outcomeFatal
)

func (k outcomeKind) String() string {
	switch k {
	case outcomeSuccess:
		return "success"
	case outcomeRetryable:
		return "retryable"
	default:
		return "fatal"
	}
}

// outcome is the result of a single attempt.
type outcome struct {
	kind outcomeKind
	resp *Response
	err  error
}

func success(r *Response) outcome { return outcome{kind: outcomeSuccess, resp: r} }
func retryable(err error) outcome { return outcome{kind: outcomeRetryable, err: err} }
func fatal(err error) outcome     { return outcome{kind: outcomeFatal, err: err} }

// Transport posts signed bodies and owns the retry loop.
type Transport struct {
	http       *httpclient.Client
	throttle   bool
	logEnabled bool
	logger     *zap.Logger
	metrics    *metrics.Metrics
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewTransport creates a Transport. throttle enables retrying 500 and 503.
func NewTransport(client *httpclient.Client, throttle, logEnabled bool, logger *zap.Logger, m *metrics.Metrics) *Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transport{
		http:       client,
		throttle:   throttle,
		logEnabled: logEnabled,
		logger:     logger,
		metrics:    m,
		sleep:      sleepContext,
	}
}

// Post sends body to https://host+path. Any non-2xx status other than the
// throttled ones is returned as a Response. Network errors and throttled
// statuses are retried; once MaxAttempts is spent a *FatalError is returned.
func (t *Transport) Post(ctx context.Context, action, host, path, body string) (*Response, error) {
	url := "https://" + host + path
	start := time.Now()
	defer t.metrics.ObserveDuration(action, start)

	if t.logEnabled {
		t.logger.Debug("request/Post", zap.String("action", action), zap.String("body", sanitize.Request(body)))
	}

	var last error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		out := t.attempt(ctx, url, body)
		t.metrics.ObserveAttempt(action, out.kind.String())

		switch out.kind {
		case outcomeSuccess:
			return out.resp, nil
		case outcomeFatal:
			return nil, &FatalError{Attempts: attempt, Err: out.err}
		}

		last = out.err
		wait := time.Duration(BackoffSeconds(attempt)) * time.Second
		t.logger.Warn("MWS request failed",
			zap.String("action", action),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(out.err),
		)

		if err := t.sleep(ctx, wait); err != nil {
			return nil, &FatalError{Attempts: attempt, Err: err}
		}
		if attempt < MaxAttempts {
			t.metrics.ObserveRetry(action)
		}
	}

	t.logger.Error("MWS request retries exhausted", zap.String("action", action), zap.Error(last))
	return nil, &FatalError{Attempts: MaxAttempts, Err: last}
}

func (t *Transport) attempt(ctx context.Context, url, body string) outcome {
	resp, err := t.http.PostForm(ctx, url, body)
	if err != nil {
		if ctx.Err() != nil {
			return fatal(ctx.Err())
		}
		return retryable(err)
	}

	if t.logEnabled {
		t.logger.Debug("response", zap.Int("status", resp.StatusCode), zap.String("body", sanitize.Response(string(resp.Body))))
	}

	if t.throttle {
		switch resp.StatusCode {
		case 500:
			return retryable(ErrInternalServerError)
		case 503:
			return retryable(ErrServiceUnavailable)
		}
	}

	return success(NewResponse(resp.StatusCode, resp.Header, resp.Body))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
