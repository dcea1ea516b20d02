package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/uber/stackide-proxy/src/stackide/internal/fs"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	_configKey       = "settings"
	_debounceTimeout = 50 * time.Millisecond
)

// Verbosity values accepted in the settings file.
const (
	VerbosityNone    Verbosity = "none"
	VerbosityError   Verbosity = "error"
	VerbosityWarning Verbosity = "warning"
	VerbosityNormal  Verbosity = "normal"
	VerbosityDebug   Verbosity = "debug"
)

//go:generate mockgen -destination=settingsmock/settings_mock.go -package=settingsmock . Store

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Verbosity is the user facing log level.
type Verbosity string

// Level maps the verbosity onto a zap level. Unknown values map to warning.
func (v Verbosity) Level() zapcore.Level {
	switch v {
	case VerbosityNone:
		return zapcore.FatalLevel
	case VerbosityError:
		return zapcore.ErrorLevel
	case VerbosityNormal:
		return zapcore.InfoLevel
	case VerbosityDebug:
		return zapcore.DebugLevel
	default:
		return zapcore.WarnLevel
	}
}

// Settings are the user editable options of the proxy.
type Settings struct {
	// AddToPATH is prepended to PATH when looking up and running the worker tool.
	AddToPATH []string `yaml:"add_to_PATH"`
	// ShowPopup is forwarded to editors along with source errors.
	ShowPopup bool      `yaml:"show_popup"`
	Verbosity Verbosity `yaml:"verbosity"`
}

// AugmentPath returns basePath with AddToPATH entries in front.
func (s Settings) AugmentPath(basePath string) string {
	if len(s.AddToPATH) == 0 {
		return basePath
	}
	return strings.Join(append(append([]string{}, s.AddToPATH...), basePath), string(os.PathListSeparator))
}

// Listener is called after the settings file changed.
type Listener func(ctx context.Context, s Settings)

// Store holds the current settings and reloads them whenever the settings file changes.
type Store interface {
	Current() Settings
	// OnChange registers a listener for later changes.
	OnChange(listener Listener)
}

// Config is the "settings" config key.
type Config struct {
	Path string `yaml:"path"`
}

// Params are inbound parameters to initialize a new Store.
type Params struct {
	fx.In

	Config    config.Provider
	FS        fs.StackFS
	Lifecycle fx.Lifecycle
	Logger    *zap.SugaredLogger
	Level     zap.AtomicLevel
}

type store struct {
	path   string
	fs     fs.StackFS
	logger *zap.SugaredLogger
	level  zap.AtomicLevel

	mu        sync.RWMutex
	current   Settings
	listeners []Listener

	watcher       *fsnotify.Watcher
	closer        chan struct{}
	loopDone      chan struct{}
	// debounceMu guards debounceTimer and closed. Callbacks admitted while open are tracked by reloads.
	debounceMu    sync.Mutex
	debounceTimer *time.Timer
	closed        bool
	reloads       sync.WaitGroup
}

// New creates a Store whose file watcher runs for the lifetime of the application.
func New(p Params) (Store, error) {
	var cfg Config
	if err := p.Config.Get(_configKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("getting config field %q: %w", _configKey, err)
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("missing field %q in config", _configKey+".path")
	}

	s := &store{
		path:    filepath.Clean(cfg.Path),
		fs:      p.FS,
		logger:  p.Logger.With("plugin", "settings"),
		level:   p.Level,
		current: Settings{Verbosity: VerbosityWarning},
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: s.start,
		OnStop:  s.stop,
	})

	return s, nil
}

func (s *store) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *store) OnChange(listener Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

func (s *store) start(ctx context.Context) error {
	if _, err := s.reload(); err != nil {
		s.logger.Warnw("using default settings", "path", s.path, "error", err)
	}

	// The directory is watched so that editors replacing the file atomically are noticed.
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fs watcher for settings: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %q: %w", dir, err)
	}

	s.watcher = watcher
	s.closer = make(chan struct{})
	s.loopDone = make(chan struct{})
	go s.handleChanges()
	return nil
}

func (s *store) stop(ctx context.Context) error {
	if s.watcher == nil {
		return nil
	}
	close(s.closer)
	<-s.loopDone
	s.reloads.Wait()
	return nil
}

func (s *store) handleChanges() {
	defer close(s.loopDone)
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			s.handleDebounce()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warnf("Failure in settings watcher: %v", err)

		case <-s.closer:
			s.closeDebounce()

			if err := s.watcher.Close(); err != nil {
				s.logger.Warnf("Failed to close settings watcher: %v", err)
			}
			return
		}
	}
}

// handleDebounce collapses bursts of events for the settings file into one reload.
func (s *store) handleDebounce() {
	s.debounceMu.Lock()
	defer s.debounceMu.Unlock()

	if s.closed {
		return
	}
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(_debounceTimeout, s.reloadDebounced)
}

// closeDebounce cancels a scheduled reload. Reloads that fire afterwards do nothing.
func (s *store) closeDebounce() {
	s.debounceMu.Lock()
	defer s.debounceMu.Unlock()

	s.closed = true
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}
}

func (s *store) reloadDebounced() {
	s.debounceMu.Lock()
	if s.closed {
		s.debounceMu.Unlock()
		return
	}
	s.debounceTimer = nil
	s.reloads.Add(1)
	s.debounceMu.Unlock()
	defer s.reloads.Done()

	changed, err := s.reload()
	if err != nil {
		s.logger.Warnw("keeping previous settings", "path", s.path, "error", err)
		return
	}
	if changed {
		s.notify(context.Background())
	}
}

// reload reads the settings file. A missing file means defaults.
func (s *store) reload() (bool, error) {
	next := Settings{Verbosity: VerbosityWarning}

	exists, err := s.fs.FileExists(s.path)
	if err != nil {
		return false, err
	}
	if exists {
		data, err := s.fs.ReadFile(s.path)
		if err != nil {
			return false, fmt.Errorf("reading settings: %w", err)
		}
		if err := yaml.Unmarshal(data, &next); err != nil {
			return false, fmt.Errorf("parsing settings: %w", err)
		}
		if next.Verbosity == "" {
			next.Verbosity = VerbosityWarning
		}
	}

	s.mu.Lock()
	changed := !reflect.DeepEqual(s.current, next)
	s.current = next
	s.mu.Unlock()

	// Without a file the configured log level stands until the settings change.
	if exists || changed {
		s.level.SetLevel(next.Verbosity.Level())
	}
	s.logger.Debugw("settings loaded", "path", s.path, "settings", next)
	return changed, nil
}

func (s *store) notify(ctx context.Context) {
	s.mu.RLock()
	current := s.current
	listeners := append([]Listener{}, s.listeners...)
	s.mu.RUnlock()

	s.logger.Infow("settings changed", "addToPATH", current.AddToPATH, "verbosity", current.Verbosity)
	for _, l := range listeners {
		l(ctx, current)
	}
}
