package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// LocalModel manages the on-device model's lifecycle:
//
//	notDownloaded -> downloading -> downloaded -> ready
//	ready -> downloaded (deactivate)
//	any   -> notDownloaded (delete)
//	download/activation failure -> error
//
// The error state is terminal until a fresh download or activation is
// attempted. Activate, Deactivate and Delete never return an error: they
// report the resulting status and record LastError, since a refused
// transition is an expected, recoverable condition.
type LocalModel struct {
	bridge Bridge
	logger zerolog.Logger

	mu          sync.Mutex
	kind        string
	model       string
	status      Status
	progress    float64
	lastError   string
	downloading bool
}

// NewLocalModel creates a lifecycle for the given runtime bridge. kind
// names the runtime family; model may be empty until a download assigns it.
func NewLocalModel(bridge Bridge, kind, model string, logger zerolog.Logger) *LocalModel {
	return &LocalModel{
		bridge: bridge,
		logger: logger,
		kind:   kind,
		model:  model,
		status: StatusNotDownloaded,
	}
}

// Resolve syncs lifecycle state with what the runtime actually has: an
// installed model is downloaded, a loaded one is ready. Bridge failures
// leave the state untouched and record LastError.
func (l *LocalModel) Resolve(ctx context.Context) {
	l.mu.Lock()
	model := l.model
	l.mu.Unlock()
	if model == "" {
		return
	}

	resolved, err := l.bridge.Resolve(ctx, model)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			l.lastError = "local backend unavailable"
		} else {
			l.lastError = err.Error()
		}
		return
	}
	if l.downloading {
		return
	}
	switch {
	case resolved.Active:
		l.status = StatusReady
	case resolved.Installed:
		if l.status != StatusReady {
			l.status = StatusDownloaded
		}
	default:
		l.status = StatusNotDownloaded
		l.progress = 0
	}
}

// Download pulls the model from the runtime's registry. Progress reported
// to onProgress is strictly increasing within [0,1] and always ends with an
// exact 1.0 before Download returns successfully. On failure the lifecycle
// lands in StatusError with LastError set and a *ServiceError is returned.
func (l *LocalModel) Download(ctx context.Context, onProgress func(float64)) error {
	l.mu.Lock()
	if l.model == "" {
		l.mu.Unlock()
		return NewServiceError("no local model configured")
	}
	if l.downloading {
		l.mu.Unlock()
		return NewServiceError("download already in progress")
	}
	l.downloading = true
	l.status = StatusDownloading
	l.progress = 0
	l.lastError = ""
	model := l.model
	l.mu.Unlock()

	report := func(frac float64) {
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		l.mu.Lock()
		if frac <= l.progress {
			l.mu.Unlock()
			return
		}
		l.progress = frac
		l.mu.Unlock()
		if onProgress != nil {
			onProgress(frac)
		}
	}

	err := l.bridge.Download(ctx, model, report)

	l.mu.Lock()
	l.downloading = false
	if err != nil {
		l.status = StatusError
		if errors.Is(err, ErrUnsupported) {
			l.lastError = "local backend unavailable"
		} else {
			l.lastError = err.Error()
		}
		msg := l.lastError
		l.mu.Unlock()
		l.logger.Warn().Str("model", model).Err(err).Msg("model download failed")
		return &ServiceError{Message: msg, Cause: err}
	}
	final := l.progress < 1
	l.progress = 1
	l.status = StatusDownloaded
	l.mu.Unlock()

	if final && onProgress != nil {
		onProgress(1)
	}
	l.logger.Info().Str("model", model).Msg("model downloaded")
	return nil
}

// Activate moves downloaded -> ready. Called from any other state it leaves
// the state unchanged and records LastError. A bridge failure during a
// legitimate activation lands in StatusError.
func (l *LocalModel) Activate(ctx context.Context) Status {
	l.mu.Lock()
	if l.status != StatusDownloaded {
		l.lastError = fmt.Sprintf("cannot activate from status %s", l.status)
		status := l.status
		l.mu.Unlock()
		return status
	}
	model := l.model
	l.mu.Unlock()

	err := l.bridge.Activate(ctx, model)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.status = StatusError
		if errors.Is(err, ErrUnsupported) {
			l.lastError = "local backend unavailable"
		} else {
			l.lastError = err.Error()
		}
		l.logger.Warn().Str("model", model).Err(err).Msg("model activation failed")
		return l.status
	}
	l.status = StatusReady
	l.lastError = ""
	l.logger.Info().Str("model", model).Msg("model activated")
	return l.status
}

// Deactivate moves ready -> downloaded. The runtime unload is best-effort:
// a bridge failure is recorded but never blocks the transition.
func (l *LocalModel) Deactivate(ctx context.Context) Status {
	l.mu.Lock()
	if l.status != StatusReady {
		l.lastError = fmt.Sprintf("cannot deactivate from status %s", l.status)
		status := l.status
		l.mu.Unlock()
		return status
	}
	model := l.model
	l.mu.Unlock()

	err := l.bridge.Deactivate(ctx, model)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = StatusDownloaded
	if err != nil && !errors.Is(err, ErrUnsupported) {
		l.lastError = err.Error()
	} else {
		l.lastError = ""
	}
	return l.status
}

// Delete removes the model from any state, clearing the model name. The
// runtime delete is best-effort; failures are recorded, not raised.
func (l *LocalModel) Delete(ctx context.Context) Status {
	l.mu.Lock()
	model := l.model
	l.mu.Unlock()

	var err error
	if model != "" {
		err = l.bridge.Delete(ctx, model)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = StatusNotDownloaded
	l.progress = 0
	l.model = ""
	if err != nil && !errors.Is(err, ErrUnsupported) {
		l.lastError = err.Error()
	} else {
		l.lastError = ""
	}
	if model != "" {
		l.logger.Info().Str("model", model).Msg("model deleted")
	}
	return l.status
}

// Ask runs one generation on the local model. It requires StatusReady and
// fails with a *ServiceError otherwise; nothing ever falls back to the
// remote backend from here.
func (l *LocalModel) Ask(ctx context.Context, req AskRequest) (string, error) {
	l.mu.Lock()
	status := l.status
	model := l.model
	l.mu.Unlock()

	if status != StatusReady {
		return "", NewNotReadyError(status)
	}

	text, err := l.bridge.Ask(ctx, model, req)
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			return "", &ServiceError{Message: "local backend unavailable", Cause: err}
		}
		return "", &ServiceError{Message: "local ask failed: " + err.Error(), Cause: err}
	}
	return text, nil
}

// CheckHealth reports whether the local model can serve asks right now.
func (l *LocalModel) CheckHealth(ctx context.Context) bool {
	return l.Status() == StatusReady
}

// SetModel switches the lifecycle to a different model name, resetting to
// notDownloaded. Setting the current name is a no-op.
func (l *LocalModel) SetModel(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if name == l.model {
		return
	}
	l.model = name
	l.status = StatusNotDownloaded
	l.progress = 0
	l.lastError = ""
}

// Status returns the current lifecycle state.
func (l *LocalModel) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Progress returns the current download progress in [0,1].
func (l *LocalModel) Progress() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.progress
}

// LastError returns the most recently recorded failure, or "".
func (l *LocalModel) LastError() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastError
}

// ModelName returns the configured model name, or "" after a delete.
func (l *LocalModel) ModelName() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.model
}

// Config produces an immutable snapshot for display layers.
func (l *LocalModel) Config(mode Mode) Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Config{
		Mode:        mode,
		BackendKind: l.kind,
		ModelName:   l.model,
		Status:      l.status,
		Progress:    l.progress,
		LastError:   l.lastError,
	}
}
