package server

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the relay's Prometheus instrumentation. A fresh registry is
// used per Server so tests can construct independent instances.
type metrics struct {
	bundlesRegistered   prometheus.Counter
	bundlesRequested    prometheus.Counter
	oneTimeKeysExhausted prometheus.Counter
	messagesSent        prometheus.Counter
	messagesLive        prometheus.Counter
	messagesQueued      prometheus.Counter
	streamsOpen         prometheus.Gauge
}

func newMetrics(reg *prometheus.Registry) *metrics {
	m := &metrics{
		bundlesRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rendezvous_bundles_registered_total",
			Help: "Pre-key bundle registrations accepted.",
		}),
		bundlesRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rendezvous_bundles_requested_total",
			Help: "Pre-key bundle fetches served.",
		}),
		oneTimeKeysExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rendezvous_one_time_prekeys_exhausted_total",
			Help: "Bundle fetches served with no one-time pre-key left to dispense.",
		}),
		messagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rendezvous_messages_sent_total",
			Help: "Envelopes accepted for relay.",
		}),
		messagesLive: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rendezvous_messages_delivered_live_total",
			Help: "Envelopes handed directly to a connected live receiver.",
		}),
		messagesQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rendezvous_messages_queued_total",
			Help: "Envelopes queued because no live receiver was connected or able to accept them.",
		}),
		streamsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rendezvous_retrieval_streams_open",
			Help: "Currently connected message-retrieval WebSocket streams.",
		}),
	}
	reg.MustRegister(
		m.bundlesRegistered,
		m.bundlesRequested,
		m.oneTimeKeysExhausted,
		m.messagesSent,
		m.messagesLive,
		m.messagesQueued,
		m.streamsOpen,
	)
	return m
}
