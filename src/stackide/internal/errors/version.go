package errors

import "fmt"

// VersionMismatchError reports a worker speaking a different protocol version than expected.
type VersionMismatchError struct {
	Got      [3]int
	Expected [3]int
	// Older is true when the worker is behind the expected version.
	Older bool
}

// Error is an implementation of the error interface.
func (v *VersionMismatchError) Error() string {
	direction := "newer"
	if v.Older {
		direction = "older"
	}
	return fmt.Sprintf("worker protocol version %v is %s than expected %v", v.Got, direction, v.Expected)
}
