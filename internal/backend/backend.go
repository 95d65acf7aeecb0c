// Package backend routes journal-generation requests to either a remote
// OpenAI-compatible service or an on-device model runtime, and manages the
// local model's download/activation lifecycle.
package backend

import "context"

// Mode selects which backend family serves requests.
type Mode string

const (
	ModeRemote Mode = "remote"
	ModeLocal  Mode = "local"
)

// ParseMode maps stored configuration onto a Mode, defaulting to remote.
func ParseMode(s string) Mode {
	if Mode(s) == ModeLocal {
		return ModeLocal
	}
	return ModeRemote
}

// AskRequest holds the parameters for a single generation call.
type AskRequest struct {
	Prompt       string
	SystemPrompt string
	Temperature  float32
	MaxTokens    int
}

// Asker is the request surface shared by the remote backend and the local
// lifecycle. Ask failures are always *ServiceError.
type Asker interface {
	Ask(ctx context.Context, req AskRequest) (string, error)
	CheckHealth(ctx context.Context) bool
}

// Status is a local model lifecycle state.
type Status string

const (
	StatusNotDownloaded Status = "notDownloaded"
	StatusDownloading   Status = "downloading"
	StatusDownloaded    Status = "downloaded"
	StatusReady         Status = "ready"
	StatusError         Status = "error"
)

// Config is an immutable snapshot of routing and lifecycle state for
// display layers and the settings store.
type Config struct {
	Mode        Mode    `json:"mode"`
	BackendKind string  `json:"backend_kind"`
	ModelName   string  `json:"model_name"`
	Status      Status  `json:"status"`
	Progress    float64 `json:"progress"`
	LastError   string  `json:"last_error,omitempty"`
}
