package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OpenSockets tracks currently connected websocket clients.
	OpenSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "whatsapp_open_sockets",
		Help: "Number of websocket connections currently open.",
	})

	// MessagesDelivered counts newMessage frames fanned out to sockets.
	MessagesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whatsapp_messages_delivered_total",
		Help: "Total chat message frames delivered to clients.",
	})

	// PresenceEvents counts userStatusChanged broadcasts.
	PresenceEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whatsapp_presence_events_total",
		Help: "Total presence change events broadcast.",
	})

	// OTPIssued counts one-time codes generated.
	OTPIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whatsapp_otp_issued_total",
		Help: "Total one-time sign-in codes issued.",
	})
)
