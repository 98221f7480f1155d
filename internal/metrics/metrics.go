// Registers:
//
//	#birdeyeflow_frames_received_total
//	#birdeyeflow_events_decoded_total{type}
//	#birdeyeflow_decode_errors_total{kind}
//	#birdeyeflow_reconnects_total
//	#birdeyeflow_dropped_total{metric}
//	#birdeyeflow_buffer_length{buffer}
//	#birdeyeflow_rest_requests_total{endpoint,status}
//	#go_* and process_* system metrics
//
// Serve exposes them on /metrics using the Prometheus HTTP handler.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"birdeyeflow/logger"
)

var (
	registry = prometheus.NewRegistry()

	framesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "birdeyeflow_frames_received_total",
		Help: "Websocket frames read from the stream",
	})
	eventsDecoded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "birdeyeflow_events_decoded_total",
		Help: "Inbound messages decoded into typed events",
	}, []string{"type"})
	decodeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "birdeyeflow_decode_errors_total",
		Help: "Inbound messages that failed to decode",
	}, []string{"kind"})
	reconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "birdeyeflow_reconnects_total",
		Help: "Stream reconnect attempts",
	})
	dropsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "birdeyeflow_dropped_total",
		Help: "Messages dropped because a buffer was full",
	}, []string{"metric"})
	bufferLength = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "birdeyeflow_buffer_length",
		Help: "Messages waiting in a pipeline buffer",
	}, []string{"buffer"})
	restRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "birdeyeflow_rest_requests_total",
		Help: "REST requests by endpoint and status code",
	}, []string{"endpoint", "status"})
)

func init() {
	registry.MustRegister(
		framesReceived, eventsDecoded, decodeErrors, reconnects,
		dropsTotal, bufferLength, restRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Registry returns the registry every birdeyeflow collector is registered on.
func Registry() *prometheus.Registry {
	return registry
}

func IncFramesReceived() {
	framesReceived.Inc()
}

func IncEventDecoded(eventType string) {
	eventsDecoded.WithLabelValues(eventType).Inc()
}

func IncDecodeError(kind string) {
	decodeErrors.WithLabelValues(kind).Inc()
}

func IncReconnect() {
	reconnects.Inc()
}

func IncRESTRequest(endpoint, status string) {
	restRequests.WithLabelValues(endpoint, status).Inc()
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.GetLogger().WithComponent("metrics").WithFields(logger.Fields{"addr": addr}).Info("serving prometheus metrics")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
