package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordClientCall(t *testing.T) {
	clientCallsTotal.Reset()

	RecordClientCall("composite", "success", 0.2)
	RecordClientCall("composite", "success", 0.3)
	RecordClientCall("composite", "error", 0.1)

	assert.Equal(t, 2.0, testutil.ToFloat64(clientCallsTotal.WithLabelValues("composite", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(clientCallsTotal.WithLabelValues("composite", "error")))
	assert.NotZero(t, testutil.CollectAndCount(clientCallDuration))
}

func TestRecordHTTPRequest(t *testing.T) {
	httpRequestsTotal.Reset()

	RecordHTTPRequest("POST", "/apply_color", "200", 0.05)

	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/apply_color", "200")))
}

func TestSetMasksStored(t *testing.T) {
	SetMasksStored(4)
	assert.Equal(t, 4.0, testutil.ToFloat64(masksStored))
	SetMasksStored(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(masksStored))
}

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)
	Register(reg)

	RecordClientCall("download", "success", 0.01)
	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}
