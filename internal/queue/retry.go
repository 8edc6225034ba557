package queue

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"
)

type Severity int

const (
	SeverityRetryable Severity = iota
	SeverityPermanent
)

// Sentinels for failures callers already know the class of.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
)

// ClassifyError decides whether the queue should redeliver after a
// processing failure. Rules run in priority order: timeouts and network
// failures retry, validation and auth failures do not, and anything
// ambiguous retries — transient infrastructure trouble is far more common
// than a logic bug that happens to error.
func ClassifyError(err error) Severity {
	if err == nil {
		return SeverityRetryable
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return SeverityRetryable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return SeverityRetryable
	}

	if errors.Is(err, ErrValidation) {
		return SeverityPermanent
	}
	if errors.Is(err, ErrUnauthorized) {
		return SeverityPermanent
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"),
		strings.Contains(msg, "connection refused"), strings.Contains(msg, "connection reset"):
		return SeverityRetryable
	case strings.Contains(msg, "validation"), strings.Contains(msg, "invalid"):
		return SeverityPermanent
	case strings.Contains(msg, "unauthorized"), strings.Contains(msg, "forbidden"),
		strings.Contains(msg, "authentication"):
		return SeverityPermanent
	}

	return SeverityRetryable
}
