package ai

import (
	"context"
	stderrors "errors"
	"regexp"
	"strings"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
)

// quotaMarkers are substrings providers use in rate limit and billing errors
// that do not surface as typed errors.
var quotaMarkers = []string{
	"quota",
	"resource_exhausted",
	"resource exhausted",
	"rate limit",
	"rate_limit",
	"insufficient_quota",
	"too many requests",
}

// tooManyRequests matches a 429 status in free text such as "Error 429",
// "status code 429" or "HTTP/1.1 429", but not 429 inside an id or count
var tooManyRequests = regexp.MustCompile(`\b(?:status|error|code|http(?:/[0-9.]+)?)\W{0,3}429\b`)

// classify maps a provider error onto the service-failure taxonomy. isQuota
// is the provider's typed check; the string markers are a fallback.
func classify(provider string, err error, isQuota func(error) bool) error {
	if err == nil {
		return nil
	}

	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.WrapWithCode(err, errors.CodeDeadlineExceeded, provider+" request timed out")
	case stderrors.Is(err, context.Canceled):
		return errors.WrapWithCode(err, errors.CodeCanceled, provider+" request canceled")
	case (isQuota != nil && isQuota(err)) || hasQuotaMarker(err):
		return errors.WrapWithCode(err, errors.CodeResourceExhausted, provider+" quota exhausted")
	default:
		return errors.WrapWithCode(err, errors.CodeUnavailable, provider+" request failed")
	}
}

func hasQuotaMarker(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, m := range quotaMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return tooManyRequests.MatchString(msg)
}
