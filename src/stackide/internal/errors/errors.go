package errors

import stderr "errors"

// New returns an error that formats as the given text.
// Each call to New returns a distinct error value even if the text is identical.
func New(msg string) error {
	return stderr.New(msg)
}

var (
	// ErrToolNotFound reports that the worker binary could not be found on the augmented PATH.
	ErrToolNotFound = New("worker tool not found")
	// ErrTransport reports that a message could not be written to the worker.
	ErrTransport = New("worker transport closed")
	// ErrDecode reports a line from the worker that is not a valid message.
	ErrDecode = New("undecodable worker message")
	// ErrNotRunning reports that a project has no active worker.
	ErrNotRunning = New("no active worker for project")
	// ErrNoInstance reports a request sent to a project that intentionally has no worker.
	ErrNoInstance = New("project has no worker instance")
	// ErrNoReply reports a request whose reply did not arrive in time.
	ErrNoReply = New("worker did not reply in time")
)

// IsSpawnError reports whether the error came from a missing worker binary.
func IsSpawnError(e error) bool {
	return stderr.Is(e, ErrToolNotFound)
}

// IsUnavailable reports whether the error means the request never reached a worker.
func IsUnavailable(e error) bool {
	return stderr.Is(e, ErrNotRunning) || stderr.Is(e, ErrNoInstance) || stderr.Is(e, ErrTransport)
}
