package messaging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/coexist-app/coexist-backend/internal/matching"
)

var (
	messagesSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "messaging_messages_sent_total",
		Help: "Total number of messages stored",
	})

	sendsDeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messaging_sends_denied_total",
		Help: "Send attempts rejected by the gate, by reason",
	}, []string{"reason"})
)

func RecordMessageSent() {
	messagesSentTotal.Inc()
}

func RecordSendDenied(reason matching.DenyReason) {
	sendsDeniedTotal.WithLabelValues(string(reason)).Inc()
}
