package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/infrastructure/tracing"
)

// ErrEmptyReply is returned when the model answers without content
var ErrEmptyReply = errors.New("model returned no choices")

// StatusError is a non-2xx answer from the model endpoint
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("model endpoint returned %d", e.Code)
	}
	return fmt.Sprintf("model endpoint returned %d: %s", e.Code, e.Message)
}

// Config configures the completion client
type Config struct {
	Endpoint     string
	Timeout      time.Duration
	RPS          float64
	Burst        int
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// DefaultConfig returns production settings for endpoint
func DefaultConfig(endpoint string) Config {
	return Config{
		Endpoint:     endpoint,
		Timeout:      60 * time.Second,
		RPS:          2,
		Burst:        1,
		MaxRetries:   3,
		RetryWaitMin: time.Second,
		RetryWaitMax: 30 * time.Second,
	}
}

// Client speaks the OpenAI-compatible chat completions protocol
type Client struct {
	resty    *resty.Client
	limiter  *rate.Limiter
	breaker  *resilience.Breaker
	endpoint string
	logger   *logging.Logger
}

// New creates a completion client with rate limiting, retries and a circuit breaker
func New(cfg Config, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil

	restyClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(cfg.RetryWaitMin).
		SetRetryMaxWaitTime(cfg.RetryWaitMax).
		SetHeader("User-Agent", "AgentOS-Workspace/1.0").
		SetHeader("Content-Type", "application/json").
		SetTransport(retryClient.HTTPClient.Transport).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		AddRetryCondition(retryPolicy).
		SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
			attempt := 0
			var raw *http.Response
			if resp != nil {
				raw = resp.RawResponse
				if resp.Request != nil {
					attempt = resp.Request.Attempt
				}
			}
			return retryablehttp.DefaultBackoff(cfg.RetryWaitMin, cfg.RetryWaitMax, attempt, raw), nil
		})

	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	breaker := resilience.New("model", resilience.Settings{
		MaxProbes: 1,
		Cooldown:  30 * time.Second,
		ShouldTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		IsFailure: isUpstreamFailure,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		resty:    restyClient,
		limiter:  rate.NewLimiter(limit, burst),
		breaker:  breaker,
		endpoint: cfg.Endpoint,
		logger:   logger,
	}
}

// retryPolicy defers to retryablehttp: connection errors, 429 and 5xx retry
func retryPolicy(resp *resty.Response, err error) bool {
	ctx := context.Background()
	var raw *http.Response
	if resp != nil {
		raw = resp.RawResponse
		if resp.Request != nil {
			ctx = resp.Request.Context()
		}
	}
	retry, _ := retryablehttp.DefaultRetryPolicy(ctx, raw, err)
	return retry
}

// isUpstreamFailure keeps caller mistakes and cancellation out of the breaker
func isUpstreamFailure(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusTooManyRequests
	}
	return resilience.DefaultIsFailure(err)
}

// Breaker exposes the circuit breaker for health reporting
func (c *Client) Breaker() *resilience.Breaker {
	return c.breaker
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the conversation to the model and returns the reply
func (c *Client) Complete(ctx context.Context, req session.CompletionRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	body := make(map[string]interface{}, len(req.Params)+2)
	for k, v := range req.Params {
		body[k] = v
	}
	messages := make([]chatMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = chatMessage{Role: m.Role, Content: m.Content}
	}
	body["model"] = req.Model
	body["messages"] = messages

	var reply string
	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		var result chatResponse
		var apiErr errorResponse

		r := c.resty.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(&result).
			SetError(&apiErr)
		if req.Credential != "" {
			r.SetAuthToken(req.Credential)
		}
		tracing.InjectHeaders(ctx, func(k, v string) { r.SetHeader(k, v) })

		start := time.Now()
		resp, err := r.Post(c.endpoint)
		if err != nil {
			return fmt.Errorf("model request: %w", err)
		}
		c.logger.Debug("Model responded",
			zap.String("model", req.Model),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("duration", time.Since(start)))

		if resp.IsError() {
			return &StatusError{Code: resp.StatusCode(), Message: apiErr.Error.Message}
		}
		if len(result.Choices) == 0 {
			return ErrEmptyReply
		}
		reply = strings.TrimSpace(result.Choices[0].Message.Content)
		return nil
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}
