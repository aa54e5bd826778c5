package scan

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)
	e.NotifyMounted("Widget")
	e.NotifyMounted("Widget")
	e.SampleMemoryNow()

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewCollector(e)))

	expected := `
# HELP vuescan_component_instances Live instances per component
# TYPE vuescan_component_instances gauge
vuescan_component_instances{component="Widget"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "vuescan_component_instances"))

	count, err := testutil.GatherAndCount(reg, "vuescan_memory_tracking")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
