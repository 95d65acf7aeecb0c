package backend

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultRemoteTimeout bounds every remote generation call. On expiry the
// call fails with a timeout ServiceError; it is never silently retried.
const DefaultRemoteTimeout = 60 * time.Second

const healthProbeTimeout = 5 * time.Second

// RemoteConfig configures the remote OpenAI-compatible backend.
type RemoteConfig struct {
	BaseURL string // service root, e.g. "https://api.bodypress.app"
	APIKey  string
	Model   string
	Timeout time.Duration // zero means DefaultRemoteTimeout
}

// Remote talks to an OpenAI-compatible chat-completions service.
type Remote struct {
	client *openai.Client
	probe  *resty.Client
	model  string
}

// NewRemote creates a Remote backend for the given service.
func NewRemote(cfg RemoteConfig) *Remote {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	root := strings.TrimRight(cfg.BaseURL, "/")

	oc := openai.DefaultConfig(cfg.APIKey)
	if root != "" {
		apiBase := root
		if !strings.HasSuffix(apiBase, "/v1") {
			apiBase += "/v1"
		}
		oc.BaseURL = apiBase
	}
	oc.HTTPClient = &http.Client{Timeout: timeout}

	probe := resty.New().
		SetBaseURL(root).
		SetTimeout(healthProbeTimeout)

	return &Remote{
		client: openai.NewClientWithConfig(oc),
		probe:  probe,
		model:  cfg.Model,
	}
}

// Ask sends one chat-completions request and returns the first choice's
// message content, or empty string when the service returns no choices.
// All failures are *ServiceError.
func (r *Remote) Ask(ctx context.Context, req AskRequest) (string, error) {
	model := r.model
	if model == "" {
		model = openai.GPT4o
	}

	messages := []openai.ChatCompletionMessage{}
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      false,
	})
	if err != nil {
		return "", remoteError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// CheckHealth probes GET /health on the service root; 200 means healthy.
func (r *Remote) CheckHealth(ctx context.Context) bool {
	resp, err := r.probe.R().SetContext(ctx).Get("/health")
	return err == nil && resp.StatusCode() == http.StatusOK
}

// remoteError maps go-openai failures onto the ServiceError taxonomy:
// error-envelope message when the server sent one, raw body otherwise,
// "HTTP {code}" as the last resort, and timeout/transport for the rest.
func remoteError(err error) *ServiceError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return NewHTTPError(apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := strings.TrimSpace(string(reqErr.Body))
		return NewHTTPError(reqErr.HTTPStatusCode, body)
	}

	if isTimeout(err) {
		return NewTimeoutError(err)
	}
	return NewTransportError(err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
