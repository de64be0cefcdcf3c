package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "test")

	m.ProxiesCreated.Inc()
	m.RecordRelease("array")
	m.RecordRelease("array")
	m.RecordRelease("schema")
	m.RecordCopy(128)

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	// created, released{array,schema}, panics, copies, bytes, recomputes
	assert.Equal(t, 7, n)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProxiesCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DescriptorsReleased.WithLabelValues("array")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DescriptorsReleased.WithLabelValues("schema")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DeepCopies))
	assert.Equal(t, 128.0, testutil.ToFloat64(m.BytesCopied))
}

func TestNewMetricsWithoutRegistry(t *testing.T) {
	m := NewMetrics(nil, "unregistered")
	m.ReleasePanics.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReleasePanics))
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg, "dup")
	assert.Panics(t, func() { NewMetrics(reg, "dup") })
}
