package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustRegister_AllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { MustRegister(reg) })

	AuthLoginsTotal.WithLabelValues(ResultSuccess).Inc()
	TokensIssuedTotal.Inc()

	n, err := testutil.GatherAndCount(reg, "auth_logins_total", "auth_tokens_issued_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Panics(t, func() { MustRegister(reg) }, "double registration must panic")
}
