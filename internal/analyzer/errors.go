package analyzer

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration     = errors.New("analyzer is not configured")
	ErrRemoteAnalysis    = errors.New("remote analysis failed")
	ErrMalformedResponse = errors.New("malformed analysis response")
	ErrInvalidContract   = errors.New("analysis response violates contract")
)

// RemoteError reports a transport or HTTP failure from the model endpoint.
type RemoteError struct {
	StatusCode int
	Message    string
	Attempts   int
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("remote analysis failed: status=%d attempts=%d message=%s", e.StatusCode, e.Attempts, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("remote analysis failed: status=%d attempts=%d", e.StatusCode, e.Attempts)
	default:
		return fmt.Sprintf("remote analysis failed: attempts=%d: %v", e.Attempts, e.Err)
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool { return target == ErrRemoteAnalysis }
