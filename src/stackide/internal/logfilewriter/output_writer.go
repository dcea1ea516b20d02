package logfilewriter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/uber/stackide-proxy/src/stackide/internal/fs"
	"github.com/uber/stackide-proxy/src/stackide/internal/serverinfofile"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	_fmtOutputKey = "output:%s"
	_configKey    = "output"
	_outputSuffix = ".log"
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Factory opens human readable output files, one per worker, for reference by the user.
// Each file path is stored in the server info file so the editor can tail it.
type Factory interface {
	Open(name string) (io.WriteCloser, error)
}

// Config is the "output" config key.
type Config struct {
	Dir string `yaml:"dir"`
}

// Params define the dependencies for New.
type Params struct {
	fx.In

	Config         config.Provider
	FS             fs.StackFS
	Lifecycle      fx.Lifecycle
	ServerInfoFile serverinfofile.ServerInfoFile
}

type factory struct {
	dir            string
	fs             fs.StackFS
	serverInfoFile serverinfofile.ServerInfoFile

	mu   sync.Mutex
	open map[*loggerWriter]struct{}
}

// New creates a Factory writing under the configured output directory.
func New(p Params) (Factory, error) {
	cfg := Config{Dir: filepath.Join(os.TempDir(), "stackide")}
	if err := p.Config.Get(_configKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("getting config field %q: %w", _configKey, err)
	}

	f := &factory{
		dir:            cfg.Dir,
		fs:             p.FS,
		serverInfoFile: p.ServerInfoFile,
		open:           make(map[*loggerWriter]struct{}),
	}

	// Writers still open at shutdown belong to workers that were not closed cleanly.
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			f.mu.Lock()
			writers := make([]*loggerWriter, 0, len(f.open))
			for w := range f.open {
				writers = append(writers, w)
			}
			f.mu.Unlock()

			var errs error
			for _, w := range writers {
				errs = multierr.Append(errs, w.Close())
			}
			return errs
		},
	})

	return f, nil
}

// Open creates the output file for name, replacing any previous one.
func (f *factory) Open(name string) (io.WriteCloser, error) {
	if err := f.fs.MkdirAll(f.dir); err != nil {
		return nil, err
	}

	path := filepath.Join(f.dir, fileName(name))
	logFile, err := f.fs.Create(path)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf(_fmtOutputKey, name)
	if err := f.serverInfoFile.UpdateField(key, path); err != nil {
		logFile.Close()
		return nil, err
	}

	// Write via a logger for formatting, timestamp, and buffering.
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(logFile),
		zap.InfoLevel,
	)

	w := &loggerWriter{
		logger: zap.New(core).Sugar(),
	}
	w.close = func() error {
		f.mu.Lock()
		delete(f.open, w)
		f.mu.Unlock()

		return multierr.Combine(
			w.logger.Sync(),
			logFile.Close(),
			f.serverInfoFile.DeleteField(key),
			f.fs.Remove(path),
		)
	}

	f.mu.Lock()
	f.open[w] = struct{}{}
	f.mu.Unlock()

	return w, nil
}

func fileName(name string) string {
	replacer := strings.NewReplacer(string(filepath.Separator), "_", " ", "_", ":", "_")
	return replacer.Replace(name) + _outputSuffix
}

type loggerWriter struct {
	logger *zap.SugaredLogger

	once     sync.Once
	close    func() error
	closeErr error
}

// Write implements the io.Writer interface by sending each non-empty line to the given logger.
func (o *loggerWriter) Write(p []byte) (n int, err error) {
	lines := strings.Split(string(p), "\n")
	for _, line := range lines {
		if len(line) > 0 {
			o.logger.Info(line)
		}
	}

	return len(p), nil
}

// Close flushes and removes the output file. Later calls return the first result.
func (o *loggerWriter) Close() error {
	o.once.Do(func() {
		if o.close != nil {
			o.closeErr = o.close()
		}
	})
	return o.closeErr
}
