package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()

	m.ObserveOperation("transfer_to_family", "ok")
	m.ObserveOperation("transfer_to_family", "ok")
	m.ObserveOperation("transfer_from_family", "conflict")
	m.ObserveRetry("create_wallet_transaction")
	m.ObserveNotificationFailure("obligation.settled")
	m.ObserveRPC("/splitledger.v1.WalletService/GetWallet", "ok", 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues("transfer_to_family", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Retries.WithLabelValues("create_wallet_transaction")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationFailure.WithLabelValues("obligation.settled")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "splitledger_ledger_operations_total")
	assert.Contains(t, string(body), "splitledger_rpc_duration_seconds")
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveOperation("x", "ok")
	m.ObserveRetry("x")
	m.ObserveNotificationFailure("x")
	m.ObserveRPC("x", "ok", time.Second)
}
