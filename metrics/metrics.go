package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StreamOpenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stream_open_total",
		Help: "Total trade stream connections opened",
	})
	StreamCloseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stream_close_total",
		Help: "Total trade stream connections closed, partitioned by close code",
	}, []string{"code"})
	StreamErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stream_errors_total",
		Help: "Total terminal trade stream transport errors",
	})

	TextMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stream_text_messages_total",
		Help: "Total text messages received from the trade stream",
	})
	BinaryMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stream_binary_messages_total",
		Help: "Total binary messages received and ignored",
	})
	ParseErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stream_parse_errors_total",
		Help: "Total trade messages that could not be parsed",
	})
	DemandRequestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stream_demand_requested_total",
		Help: "Total units of message demand requested from the transport",
	})
)

func OnOpen() {
	StreamOpenTotal.Inc()
}

func OnClose(code int) {
	StreamCloseTotal.WithLabelValues(strconv.Itoa(code)).Inc()
}

func OnError() {
	StreamErrorsTotal.Inc()
}

func OnText(parsed bool) {
	TextMessagesTotal.Inc()
	if !parsed {
		ParseErrorsTotal.Inc()
	}
}

func OnBinary() {
	BinaryMessagesTotal.Inc()
}

func OnDemand(n int64) {
	if n > 0 {
		DemandRequestedTotal.Add(float64(n))
	}
}
