package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/bazaar/marketplace-api/internal/core/domain"
)

func TestResult(t *testing.T) {
	assert.Equal(t, "success", Result(nil))
	assert.Equal(t, "invalid_credentials", Result(domain.ErrInvalidCredentials))
	assert.Equal(t, "expired", Result(fmt.Errorf("%w: %w", domain.ErrUnauthenticated, domain.ErrTokenExpired)))
}

func TestCountersAreRegistered(t *testing.T) {
	before := testutil.ToFloat64(LoginAttemptsTotal.WithLabelValues("success"))
	LoginAttemptsTotal.WithLabelValues(Result(nil)).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(LoginAttemptsTotal.WithLabelValues("success")))

	assert.Positive(t, testutil.CollectAndCount(LoginAttemptsTotal, "marketplace_login_attempts_total"))
}
