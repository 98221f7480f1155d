package metrics

import "birdeyeflow/logger"

// DropMetric identifies the metric name emitted when channel messages are dropped.
type DropMetric string

const (
	// DropMetricRawFrame records websocket frames dropped before decoding.
	DropMetricRawFrame DropMetric = "raw_frames_dropped"
	// DropMetricEvent records decoded events dropped before delivery.
	DropMetricEvent DropMetric = "events_dropped"
)

// EmitDropMetric emits a counter of one for a dropped message. Session and
// event type are attached when known.
func EmitDropMetric(log *logger.Log, metric DropMetric, session, eventType, stage string) {
	fields := logger.Fields{}
	if session != "" {
		fields["session"] = session
	}
	if eventType != "" {
		fields["type"] = eventType
	}
	if stage != "" {
		fields["stage"] = stage
	}

	EmitMetric(log, "channel_drops", string(metric), 1, "counter", fields)
	dropsTotal.WithLabelValues(string(metric)).Inc()
}
