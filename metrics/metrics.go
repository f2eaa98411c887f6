package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/Ayvan/ipk24chat-client/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Metrics holds the Prometheus collectors of one client session.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	messagesSent     *prometheus.CounterVec // by message type
	messagesReceived *prometheus.CounterVec // by message type
	retransmissions  prometheus.Counter
	undelivered      prometheus.Counter
	duplicates       prometheus.Counter
	malformed        prometheus.Counter
}

// New creates the collectors on a private registry labelled with the transport.
func New(transport string) *Metrics {
	labels := prometheus.Labels{"transport": transport}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		messagesSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "ipk24chat_messages_sent_total",
				Help:        "Messages written to the server, including retransmissions",
				ConstLabels: labels,
			},
			[]string{"type"},
		),
		messagesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "ipk24chat_messages_received_total",
				Help:        "Well-formed messages received from the server",
				ConstLabels: labels,
			},
			[]string{"type"},
		),
		retransmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "ipk24chat_retransmissions_total",
			Help:        "Datagrams sent again because no confirmation arrived in time",
			ConstLabels: labels,
		}),
		undelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "ipk24chat_undelivered_total",
			Help:        "Datagrams given up on after the retransmission budget ran out",
			ConstLabels: labels,
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "ipk24chat_duplicates_total",
			Help:        "Inbound datagrams whose message id was already processed",
			ConstLabels: labels,
		}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "ipk24chat_malformed_total",
			Help:        "Inbound frames that could not be decoded",
			ConstLabels: labels,
		}),
	}

	m.registry.MustRegister(
		m.messagesSent,
		m.messagesReceived,
		m.retransmissions,
		m.undelivered,
		m.duplicates,
		m.malformed,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) MessageSent(t models.Type) {
	if m == nil {
		return
	}
	m.messagesSent.WithLabelValues(t.String()).Inc()
}

func (m *Metrics) MessageReceived(t models.Type) {
	if m == nil {
		return
	}
	m.messagesReceived.WithLabelValues(t.String()).Inc()
}

func (m *Metrics) Retransmitted() {
	if m == nil {
		return
	}
	m.retransmissions.Inc()
}

func (m *Metrics) Undelivered() {
	if m == nil {
		return
	}
	m.undelivered.Inc()
}

func (m *Metrics) Duplicate() {
	if m == nil {
		return
	}
	m.duplicates.Inc()
}

func (m *Metrics) Malformed() {
	if m == nil {
		return
	}
	m.malformed.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is canceled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logrus.Infof("Serving metrics on %s/metrics", addr)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
