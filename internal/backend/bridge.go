package backend

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// ResolvedModel is the runtime's view of a model.
type ResolvedModel struct {
	Name      string
	Installed bool
	Active    bool
}

// Bridge is the surface the local lifecycle drives on the on-device model
// runtime. Implementations map "not implemented" runtime answers onto
// ErrUnsupported so callers can degrade to "local unavailable".
type Bridge interface {
	Resolve(ctx context.Context, model string) (ResolvedModel, error)
	Download(ctx context.Context, model string, onProgress func(float64)) error
	Activate(ctx context.Context, model string) error
	Deactivate(ctx context.Context, model string) error
	Delete(ctx context.Context, model string) error
	Ask(ctx context.Context, model string, req AskRequest) (string, error)
}

// DefaultRuntimeURL is where an Ollama-compatible runtime daemon listens.
const DefaultRuntimeURL = "http://localhost:11434"

// keepAlive controls how long the runtime keeps an activated model in
// memory between asks.
const keepAlive = "30m"

// RuntimeBridge drives an Ollama-compatible runtime daemon over HTTP.
type RuntimeBridge struct {
	api    *resty.Client
	pull   *resty.Client
	logger zerolog.Logger
}

// NewRuntimeBridge creates a bridge for the runtime at baseURL.
func NewRuntimeBridge(baseURL string, logger zerolog.Logger) *RuntimeBridge {
	if baseURL == "" {
		baseURL = DefaultRuntimeURL
	}
	base := strings.TrimRight(baseURL, "/")

	api := resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetTimeout(2 * time.Minute)

	// Pulls can run for many minutes; only the caller's context bounds them.
	pull := resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetDoNotParseResponse(true)

	return &RuntimeBridge{api: api, pull: pull, logger: logger}
}

type runtimeModel struct {
	Name string `json:"name"`
}

type runtimeModelList struct {
	Models []runtimeModel `json:"models"`
}

// Resolve reports whether model is installed on the runtime and whether it
// is currently loaded.
func (b *RuntimeBridge) Resolve(ctx context.Context, model string) (ResolvedModel, error) {
	out := ResolvedModel{Name: model}

	resp, err := b.api.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return out, fmt.Errorf("bridge resolve: %w", err)
	}
	if unsupported(resp.StatusCode()) {
		return out, ErrUnsupported
	}
	if resp.IsError() {
		return out, fmt.Errorf("bridge resolve: status %d", resp.StatusCode())
	}

	var tags runtimeModelList
	if err := json.Unmarshal(resp.Body(), &tags); err != nil {
		return out, fmt.Errorf("bridge resolve decode: %w", err)
	}
	for _, m := range tags.Models {
		if modelNamesEqual(m.Name, model) {
			out.Installed = true
			break
		}
	}

	// /api/ps lists loaded models; absent on older runtimes.
	psResp, err := b.api.R().SetContext(ctx).Get("/api/ps")
	if err != nil || psResp.IsError() {
		return out, nil
	}
	var loaded runtimeModelList
	if err := json.Unmarshal(psResp.Body(), &loaded); err != nil {
		return out, nil
	}
	for _, m := range loaded.Models {
		if modelNamesEqual(m.Name, model) {
			out.Active = true
			break
		}
	}
	return out, nil
}

type pullEvent struct {
	Status    string `json:"status"`
	Total     int64  `json:"total"`
	Completed int64  `json:"completed"`
	Error     string `json:"error"`
}

// Download pulls the model, streaming fractional progress in [0,1] to
// onProgress as the runtime reports layer transfer counts.
func (b *RuntimeBridge) Download(ctx context.Context, model string, onProgress func(float64)) error {
	resp, err := b.pull.R().
		SetContext(ctx).
		SetBody(map[string]any{"name": model, "stream": true}).
		Post("/api/pull")
	if err != nil {
		return fmt.Errorf("bridge pull: %w", err)
	}
	body := resp.RawBody()
	defer func() { _ = body.Close() }()

	if unsupported(resp.StatusCode()) {
		return ErrUnsupported
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("bridge pull: status %d", resp.StatusCode())
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev pullEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			continue // ignore malformed keep-alive lines
		}
		if ev.Error != "" {
			return fmt.Errorf("bridge pull: %s", ev.Error)
		}
		if ev.Total > 0 && onProgress != nil {
			onProgress(float64(ev.Completed) / float64(ev.Total))
		}
		if ev.Status == "success" {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("bridge pull stream: %w", err)
	}
	// Stream closed cleanly without an error event: treat as complete.
	return nil
}

// Activate loads the model into runtime memory and keeps it resident.
func (b *RuntimeBridge) Activate(ctx context.Context, model string) error {
	resp, err := b.api.R().
		SetContext(ctx).
		SetBody(map[string]any{"model": model, "keep_alive": keepAlive}).
		Post("/api/generate")
	if err != nil {
		return fmt.Errorf("bridge activate: %w", err)
	}
	if unsupported(resp.StatusCode()) {
		return ErrUnsupported
	}
	if resp.IsError() {
		return fmt.Errorf("bridge activate: status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return nil
}

// Deactivate asks the runtime to unload the model.
func (b *RuntimeBridge) Deactivate(ctx context.Context, model string) error {
	resp, err := b.api.R().
		SetContext(ctx).
		SetBody(map[string]any{"model": model, "keep_alive": 0}).
		Post("/api/generate")
	if err != nil {
		return fmt.Errorf("bridge deactivate: %w", err)
	}
	if unsupported(resp.StatusCode()) {
		return ErrUnsupported
	}
	if resp.IsError() {
		return fmt.Errorf("bridge deactivate: status %d", resp.StatusCode())
	}
	return nil
}

// Delete removes the model from the runtime. A 404 means it is already
// gone, which is success for our purposes.
func (b *RuntimeBridge) Delete(ctx context.Context, model string) error {
	resp, err := b.api.R().
		SetContext(ctx).
		SetBody(map[string]any{"name": model}).
		Delete("/api/delete")
	if err != nil {
		return fmt.Errorf("bridge delete: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil
	}
	if resp.IsError() {
		return fmt.Errorf("bridge delete: status %d", resp.StatusCode())
	}
	return nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error"`
}

// Ask runs one non-streaming chat call against the loaded model.
func (b *RuntimeBridge) Ask(ctx context.Context, model string, req AskRequest) (string, error) {
	messages := []chatMessage{}
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body := chatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Options: map[string]any{
			"temperature": req.Temperature,
			"num_predict": req.MaxTokens,
		},
	}

	resp, err := b.api.R().SetContext(ctx).SetBody(&body).Post("/api/chat")
	if err != nil {
		return "", fmt.Errorf("bridge ask: %w", err)
	}
	if unsupported(resp.StatusCode()) {
		return "", ErrUnsupported
	}
	if resp.IsError() {
		return "", fmt.Errorf("bridge ask: status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("bridge ask decode: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("bridge ask: %s", out.Error)
	}
	return out.Message.Content, nil
}

func unsupported(status int) bool {
	return status == http.StatusNotFound || status == http.StatusNotImplemented
}

// modelNamesEqual compares runtime model names, ignoring an implicit
// ":latest" tag on either side.
func modelNamesEqual(a, b string) bool {
	trim := func(s string) string {
		return strings.TrimSuffix(s, ":latest")
	}
	return a == b || trim(a) == trim(b)
}
