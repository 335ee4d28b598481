package model

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"BTCForecast/internal/domain/models"
	"BTCForecast/internal/domain/service"
	"BTCForecast/internal/services/features"
	"BTCForecast/pkg/config"
	applogger "BTCForecast/pkg/logger"
)

const (
	BackendNative = "native"
	BackendRemote = "remote"
)

// Artifact is a loaded model together with the scalers fitted at training time.
type Artifact struct {
	Loader    service.ModelLoader
	Predictor service.Predictor
	ScalerX   *features.MinMaxScaler
	ScalerY   *features.MinMaxScaler
}

// ArtifactState is built once at startup and is either loaded or unavailable
// for the life of the process.
type ArtifactState struct {
	artifact *Artifact
	err      error
	backend  string
	window   int
}

// Loaded wraps a successfully loaded artifact.
func Loaded(a *Artifact, backend string, window int) *ArtifactState {
	return &ArtifactState{artifact: a, backend: backend, window: window}
}

// Unavailable records why no artifact could be loaded.
func Unavailable(err error, backend string, window int) *ArtifactState {
	if err == nil || !errors.Is(err, ErrModelLoad) {
		err = &LoadError{Err: err}
	}
	return &ArtifactState{err: err, backend: backend, window: window}
}

// LoadArtifact loads the model and both scalers described by cfg. It never
// fails; a broken artifact yields an unavailable state.
func LoadArtifact(ctx context.Context, cfg config.ModelConfig, l *applogger.Logger) *ArtifactState {
	if l == nil {
		l = applogger.Nop()
	}

	var loader service.ModelLoader
	switch cfg.Backend {
	case BackendRemote:
		loader = NewRemoteLoader(cfg.ServiceURL, cfg.Timeout, cfg.Retries)
	default:
		loader = NewFileLoader(filepath.Join(cfg.Dir, cfg.File), cfg.WindowSize, l)
	}

	a, err := loadArtifact(ctx, cfg, loader)
	if err != nil {
		l.Error("prediction disabled, model artifact unavailable",
			applogger.String("backend", cfg.Backend),
			applogger.String("dir", cfg.Dir),
			applogger.Error(err),
		)
		return Unavailable(err, cfg.Backend, cfg.WindowSize)
	}

	l.Info("model artifact loaded",
		applogger.String("backend", cfg.Backend),
		applogger.Int("window", cfg.WindowSize),
	)
	return Loaded(a, cfg.Backend, cfg.WindowSize)
}

func loadArtifact(ctx context.Context, cfg config.ModelConfig, loader service.ModelLoader) (*Artifact, error) {
	p, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	scalerX, err := loadScaler(filepath.Join(cfg.Dir, cfg.ScalerX))
	if err != nil {
		return nil, err
	}
	scalerY, err := loadScaler(filepath.Join(cfg.Dir, cfg.ScalerY))
	if err != nil {
		return nil, err
	}

	return &Artifact{Loader: loader, Predictor: p, ScalerX: scalerX, ScalerY: scalerY}, nil
}

func loadScaler(path string) (*features.MinMaxScaler, error) {
	s, err := features.LoadMinMaxScaler(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return s, nil
}

// Available reports whether prediction is enabled.
func (s *ArtifactState) Available() bool { return s.artifact != nil }

// Err is the load failure of an unavailable state.
func (s *ArtifactState) Err() error { return s.err }

// Artifact returns the loaded artifact or nil.
func (s *ArtifactState) Artifact() *Artifact { return s.artifact }

// Predictor returns a predictor for one request. With reload set the model
// is read again through the artifact's loader.
func (s *ArtifactState) Predictor(ctx context.Context, reload bool) (service.Predictor, error) {
	if s.artifact == nil {
		return nil, fmt.Errorf("model unavailable: %w", s.err)
	}
	if !reload {
		return s.artifact.Predictor, nil
	}
	return s.artifact.Loader.Load(ctx)
}

func (s *ArtifactState) Status() models.ModelStatus {
	st := models.ModelStatus{
		Available: s.Available(),
		Backend:   s.backend,
		Window:    s.window,
	}
	if s.err != nil {
		st.Reason = s.err.Error()
	}
	return st
}
