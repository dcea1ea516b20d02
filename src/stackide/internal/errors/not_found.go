package errors

import "fmt"

// HandlerNotFoundError reports a response whose seq has no pending request.
type HandlerNotFoundError struct {
	Seq string
}

// Error is an implementation of the error interface.
func (n *HandlerNotFoundError) Error() string {
	return fmt.Sprintf("handler not found for seq %q", n.Seq)
}

// ProjectNotFoundError reports a project key that is not being observed.
type ProjectNotFoundError struct {
	Key string
}

// Error is an implementation of the error interface.
func (n *ProjectNotFoundError) Error() string {
	return fmt.Sprintf("project %q not found", n.Key)
}
