package serverinfofile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/uber/stackide-proxy/src/stackide/internal/fs"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _configKeyInfoFile = "serverInfoFilePath"

//go:generate mockgen -destination=serverinfofilemock/server_info_file_mock.go -package=serverinfofilemock . ServerInfoFile

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// ServerInfoFile manages the contents of a single JSON file that editors read to find the proxy:
// its listening address and the paths of per-project worker output files.
type ServerInfoFile interface {
	UpdateField(key string, value string) error
	DeleteField(key string) error
}

type module struct {
	infofile     string
	fs           fs.StackFS
	logger       *zap.SugaredLogger
	fileContents map[string]string
	mu           sync.Mutex
}

// Params define values to be used by ServerInfoFile.
type Params struct {
	fx.In

	Config    config.Provider
	FS        fs.StackFS
	Lifecycle fx.Lifecycle
	Logger    *zap.SugaredLogger
}

// New creates a new ServerInfoFile which manages contents of a single server info file.
func New(p Params) (ServerInfoFile, error) {
	m := module{
		fs:           p.FS,
		logger:       p.Logger,
		fileContents: make(map[string]string),
	}

	if err := m.processConfig(p.Config); err != nil {
		return nil, err
	}

	if err := m.fs.MkdirAll(filepath.Dir(m.infofile)); err != nil {
		return nil, fmt.Errorf("creating info file directory: %w", err)
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: m.OnStop,
	})

	return &m, nil
}

// OnStop removes the info file so editors do not connect to a stopped proxy.
func (m *module) OnStop(ctx context.Context) error {
	if err := m.fs.Remove(m.infofile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (m *module) UpdateField(key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fileContents[key] = value
	if err := m.write(); err != nil {
		return err
	}
	m.logger.Infow("server info saved", zap.String("file", m.infofile), zap.String(key, value))
	return nil
}

func (m *module) DeleteField(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.fileContents[key]; !ok {
		return nil
	}
	delete(m.fileContents, key)
	return m.write()
}

func (m *module) write() error {
	jsonOutput, err := json.Marshal(m.fileContents)
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}

	if err := m.fs.WriteFile(m.infofile, jsonOutput); err != nil {
		return fmt.Errorf("creating info file: %w", err)
	}
	return nil
}

func (m *module) processConfig(cfg config.Provider) error {
	val := cfg.Get(_configKeyInfoFile)
	if err := val.Populate(&m.infofile); err != nil {
		return fmt.Errorf("getting config field %q: %w", _configKeyInfoFile, err)
	}

	if m.infofile == "" {
		return fmt.Errorf("missing field %q in config", _configKeyInfoFile)
	}

	return nil
}
