// Package metrics exposes control plane counters and link utilization to
// Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"sdn-controller/pkg/controller"
	"sdn-controller/pkg/model"
)

const namespace = "sdn"

// Sink counts events by kind.
type Sink struct {
	events *prometheus.CounterVec
}

func NewSink(reg prometheus.Registerer) *Sink {
	s := &Sink{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Control plane events by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(s.events)
	return s
}

func (s *Sink) Publish(e model.Event) {
	s.events.WithLabelValues(string(e.Kind)).Inc()
}

// Source is the read side of the controller the collector scrapes.
type Source interface {
	UtilizationReport() []model.LinkLoad
	Stats() controller.Stats
}

// Collector reads topology size and per-hop load at scrape time.
type Collector struct {
	src      Source
	used     *prometheus.Desc
	capacity *prometheus.Desc
	nodes    *prometheus.Desc
	links    *prometheus.Desc
	flows    *prometheus.Desc
}

func NewCollector(src Source) *Collector {
	hop := []string{"from", "to"}
	return &Collector{
		src:      src,
		used:     prometheus.NewDesc(namespace+"_link_flows", "Flows whose primary path crosses the hop.", hop, nil),
		capacity: prometheus.NewDesc(namespace+"_link_capacity", "Configured capacity of the hop, 0 if the link is gone.", hop, nil),
		nodes:    prometheus.NewDesc(namespace+"_nodes", "Switches in the topology.", nil, nil),
		links:    prometheus.NewDesc(namespace+"_links", "Undirected links in the topology.", nil, nil),
		flows:    prometheus.NewDesc(namespace+"_flows", "Stored flows by status.", []string{"status"}, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.used
	ch <- c.capacity
	ch <- c.nodes
	ch <- c.links
	ch <- c.flows
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, l := range c.src.UtilizationReport() {
		ch <- prometheus.MustNewConstMetric(c.used, prometheus.GaugeValue, float64(l.Used), l.From, l.To)
		ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(l.Capacity), l.From, l.To)
	}
	st := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.nodes, prometheus.GaugeValue, float64(st.Nodes))
	ch <- prometheus.MustNewConstMetric(c.links, prometheus.GaugeValue, float64(st.Links))
	ch <- prometheus.MustNewConstMetric(c.flows, prometheus.GaugeValue, float64(st.Flows-st.BrokenFlows), string(model.FlowActive))
	ch <- prometheus.MustNewConstMetric(c.flows, prometheus.GaugeValue, float64(st.BrokenFlows), string(model.FlowBroken))
}
