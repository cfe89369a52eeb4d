package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdn-controller/pkg/controller"
	"sdn-controller/pkg/model"
)

func TestSinkCountsByKind(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	s := NewSink(reg)
	s.Publish(model.Event{Kind: model.EventFlowInstalled})
	s.Publish(model.Event{Kind: model.EventFlowInstalled})
	s.Publish(model.Event{Kind: model.EventFlowBroken})

	assert.Equal(t, 2.0, testutil.ToFloat64(s.events.WithLabelValues(string(model.EventFlowInstalled))))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.events.WithLabelValues(string(model.EventFlowBroken))))
}

func TestCollectorReadsController(t *testing.T) {
	c := controller.New()
	require.NoError(t, c.AddLink("A", "B", 5))
	_, err := c.InstallFlow("A", "B", 1, false)
	require.NoError(t, err)

	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(NewCollector(c))

	expected := `
# HELP sdn_link_flows Flows whose primary path crosses the hop.
# TYPE sdn_link_flows gauge
sdn_link_flows{from="A",to="B"} 1
sdn_link_flows{from="B",to="A"} 0
# HELP sdn_links Undirected links in the topology.
# TYPE sdn_links gauge
sdn_links 1
# HELP sdn_flows Stored flows by status.
# TYPE sdn_flows gauge
sdn_flows{status="active"} 1
sdn_flows{status="broken"} 0
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "sdn_link_flows", "sdn_links", "sdn_flows"))
}
