package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	InitMetrics()
	InitMetrics()

	before := testutil.ToFloat64(metrics().rejectedTxCount.WithLabelValues(string(TxDuplicated)))
	RecordRejectedTx(TxDuplicated)
	RecordRejectedTx(TxDuplicated)
	after := testutil.ToFloat64(metrics().rejectedTxCount.WithLabelValues(string(TxDuplicated)))
	assert.Equal(t, before+2, after)

	admitted := testutil.ToFloat64(metrics().admittedTxCount)
	RecordAdmittedTx()
	assert.Equal(t, admitted+1, testutil.ToFloat64(metrics().admittedTxCount))

	SetLedgerSize(7)
	assert.Equal(t, float64(7), testutil.ToFloat64(metrics().ledgerSize))

	RecordVerifyDuration(3 * time.Millisecond)
	RecordRestoredTx(4)
	IncreaseSignedTxCount()
}

func TestRegisterMetrics(t *testing.T) {
	mux := http.NewServeMux()
	RegisterMetrics(mux)
	RecordAdmittedTx()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "qledger_admitted_tx_count")
}
