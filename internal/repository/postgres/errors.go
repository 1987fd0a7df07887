package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/lib/pq"
)

// Storage error classes recorded on spans and logs.
const (
	ClassConnectivity = "connectivity"
	ClassTimeout      = "timeout"
	ClassConstraint   = "constraint"
	ClassCanceled     = "canceled"
	ClassUnknown      = "unknown"
)

// classifyError maps a driver error to a coarse class. The error itself is
// never changed.
func classifyError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ClassTimeout
	case errors.Is(err, context.Canceled):
		return ClassCanceled
	case errors.Is(err, driver.ErrBadConn):
		return ClassConnectivity
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "57014": // query_canceled, raised by statement_timeout
			return ClassTimeout
		case pqErr.Code.Class() == "23":
			return ClassConstraint
		case pqErr.Code.Class() == "08", pqErr.Code.Class() == "53", pqErr.Code.Class() == "57":
			return ClassConnectivity
		default:
			return ClassUnknown
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ClassTimeout
		}
		return ClassConnectivity
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "dial tcp"):
		return ClassConnectivity
	case strings.Contains(msg, "timeout"):
		return ClassTimeout
	default:
		return ClassUnknown
	}
}
