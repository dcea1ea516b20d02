// Package connection runs one worker process and moves protocol messages across its pipes.
package connection

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tally "github.com/uber-go/tally"
	"github.com/uber/stackide-proxy/src/stackide/internal/errors"
	"github.com/uber/stackide-proxy/src/stackide/internal/executor"
	"github.com/uber/stackide-proxy/src/stackide/internal/protocol"
	"go.uber.org/zap"
)

const (
	_inboundBufferSize = 64
	_maxStderrLine     = 1 << 20
	_killWait          = 2 * time.Second
	_pathPrefix        = "PATH="
)

// Params describe the worker to spawn.
type Params struct {
	Executor executor.Executor
	Logger   *zap.SugaredLogger
	Stats    tally.Scope

	// Tool is looked up on the PATH found in Env unless it contains a path separator.
	Tool string
	Args []string
	Dir  string
	Env  []string
	// Stderr receives a copy of every stderr line. May be nil.
	Stderr io.Writer
}

// Conn is a running worker. Messages read from its stdout are delivered in order on Inbound.
type Conn struct {
	cmd    *exec.Cmd
	logger *zap.SugaredLogger
	stats  tally.Scope

	writeMu     sync.Mutex
	stdin       io.WriteCloser
	stdinClosed bool

	inbound chan protocol.Inbound
	readers sync.WaitGroup
	done    chan struct{}
	exitErr error

	terminateOnce sync.Once
	terminateErr  error
}

// Spawn starts the worker and its reader goroutines.
// A tool that cannot be found returns an error wrapping errors.ErrToolNotFound.
func Spawn(ctx context.Context, p Params) (*Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	toolPath, err := lookPath(p.Tool, pathFromEnv(p.Env))
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(toolPath, p.Args...)
	cmd.Dir = p.Dir
	cmd.Env = p.Env

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := p.Executor.Start(cmd); err != nil {
		return nil, fmt.Errorf("starting %s in %q: %w", p.Tool, p.Dir, err)
	}

	c := &Conn{
		cmd:     cmd,
		logger:  p.Logger.With("dir", p.Dir, "pid", cmd.Process.Pid),
		stats:   p.Stats,
		stdin:   stdin,
		inbound: make(chan protocol.Inbound, _inboundBufferSize),
		done:    make(chan struct{}),
	}

	c.readers.Add(2)
	go c.readStdout(stdout)
	go c.readStderr(stderr, p.Stderr)
	go c.reap()

	return c, nil
}

// Pid of the worker process.
func (c *Conn) Pid() int {
	return c.cmd.Process.Pid
}

// Inbound delivers decoded messages. It is closed when the worker's stdout ends.
func (c *Conn) Inbound() <-chan protocol.Inbound {
	return c.inbound
}

// Done is closed once the worker has exited and both of its output streams are drained.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// ExitErr is the result of waiting for the worker. Only meaningful after Done is closed.
func (c *Conn) ExitErr() error {
	select {
	case <-c.done:
		return c.exitErr
	default:
		return nil
	}
}

// Send writes one request. Failures wrap errors.ErrTransport and are not retried.
func (c *Conn) Send(req protocol.Request) error {
	data, err := protocol.Encode(req)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.stdinClosed {
		return fmt.Errorf("%w: stdin closed", errors.ErrTransport)
	}
	if _, err := c.stdin.Write(data); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrTransport, err)
	}
	return nil
}

// Terminate closes stdin and waits for the worker to exit, killing it once ctx expires.
// Later calls return the result of the first one.
func (c *Conn) Terminate(ctx context.Context) error {
	c.terminateOnce.Do(func() {
		c.terminateErr = c.terminate(ctx)
	})
	return c.terminateErr
}

func (c *Conn) terminate(ctx context.Context) error {
	c.writeMu.Lock()
	if !c.stdinClosed {
		c.stdinClosed = true
		c.stdin.Close()
	}
	c.writeMu.Unlock()

	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
	}

	c.logger.Warn("worker did not exit after stdin closed, killing")
	if err := c.cmd.Process.Kill(); err != nil && err != os.ErrProcessDone {
		return fmt.Errorf("killing worker: %w", err)
	}

	select {
	case <-c.done:
		return nil
	case <-time.After(_killWait):
		return fmt.Errorf("worker %d still holds its output open after kill", c.Pid())
	}
}

func (c *Conn) readStdout(stdout io.Reader) {
	defer c.readers.Done()
	defer close(c.inbound)

	reader := bufio.NewReader(stdout)
	for {
		line, err := reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			c.handleLine(line)
		}
		if err != nil {
			if err != io.EOF {
				c.logger.Debugw("worker stdout ended", "error", err)
			}
			return
		}
	}
}

func (c *Conn) handleLine(line []byte) {
	msg, err := protocol.Decode(line)
	if err != nil {
		c.stats.Counter("decode_errors").Inc(1)
		c.logger.Debugw("skipping undecodable line", "line", string(line), "error", err)
		return
	}
	c.stats.Counter("messages_received").Inc(1)
	c.inbound <- msg
}

func (c *Conn) readStderr(stderr io.Reader, out io.Writer) {
	defer c.readers.Done()

	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), _maxStderrLine)
	for scanner.Scan() {
		line := scanner.Text()
		c.logger.Warnw("worker stderr", "line", line)
		if out != nil {
			if _, err := io.WriteString(out, line+"\n"); err != nil {
				c.logger.Debugw("copying worker stderr", "error", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		c.logger.Debugw("worker stderr ended", "error", err)
		// Keep the pipe drained so the worker never blocks on a full stderr.
		io.Copy(io.Discard, stderr)
	}
}

// reap waits for the process once nothing more can be read from it.
func (c *Conn) reap() {
	c.readers.Wait()
	c.exitErr = c.cmd.Wait()
	if c.exitErr != nil {
		c.logger.Infow("worker exited", "error", c.exitErr)
	} else {
		c.logger.Info("worker exited")
	}
	close(c.done)
}

// pathFromEnv returns the PATH a process started with env would see.
func pathFromEnv(env []string) string {
	if env == nil {
		return os.Getenv("PATH")
	}
	for i := len(env) - 1; i >= 0; i-- {
		if strings.HasPrefix(env[i], _pathPrefix) {
			return strings.TrimPrefix(env[i], _pathPrefix)
		}
	}
	return ""
}

// lookPath searches pathEnv rather than the proxy's own PATH.
func lookPath(tool, pathEnv string) (string, error) {
	if strings.ContainsRune(tool, filepath.Separator) {
		if isExecutable(tool) {
			return tool, nil
		}
		return "", fmt.Errorf("%w: %q", errors.ErrToolNotFound, tool)
	}

	for _, dir := range filepath.SplitList(pathEnv) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, tool)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q not in PATH %q", errors.ErrToolNotFound, tool, pathEnv)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}
