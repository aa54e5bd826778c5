package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "vuescan_test_gauge", Help: "test"})
	require.NoError(t, RegisterCollectors(reg, nil, gauge, nil))
	assert.Error(t, RegisterCollectors(reg, nil, gauge), "重复注册返回错误")
}
