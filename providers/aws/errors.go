package aws

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/aws/smithy-go"
)

// APIError wraps a failed AWS call with the (profile, region,
// operation) tuple that produced it. Transient errors are retried by
// the client; permanent ones abort the run.
type APIError struct {
	Op        string
	Profile   string
	Region    string
	Transient bool
	Err       error
}

func (e *APIError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("%s error in %s for profile %q region %q: %v", kind, e.Op, e.Profile, e.Region, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// throttleCodes are the API error codes treated as throttling.
var throttleCodes = map[string]bool{
	"Throttling":                true,
	"ThrottlingException":       true,
	"ThrottledException":        true,
	"RequestThrottled":          true,
	"RequestThrottledException": true,
	"TooManyRequestsException":  true,
	"RequestLimitExceeded":      true,
	"SlowDown":                  true,
	"EC2ThrottledException":     true,
}

// isTransient classifies throttling responses and call timeouts as
// retryable. Everything else (authorization failures, malformed
// requests, missing resources) is permanent.
func isTransient(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && throttleCodes[apiErr.ErrorCode()] {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
