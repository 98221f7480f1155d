package metrics

import (
	"context"
	"time"

	"birdeyeflow/internal/channel"
	"birdeyeflow/logger"
)

// StartChannelSizeMetrics emits occupancy metrics for the raw frame and event
// buffers every interval until ctx is cancelled. A non-positive interval
// means one second.
func StartChannelSizeMetrics(ctx context.Context, channels *channel.Channels, interval time.Duration) {
	if !IsFeatureEnabled(FeatureChannelSize) || channels == nil {
		return
	}
	if interval <= 0 {
		interval = time.Second
	}

	log := logger.GetLogger()
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				emitChannelSizes(log, channels)
			}
		}
	}()
}

func emitChannelSizes(log *logger.Log, channels *channel.Channels) {
	const component = "channel_buffers"
	EmitMetric(log, component, "raw_buffer_length", len(channels.Raw), "gauge", logger.Fields{
		"buffer":   "raw",
		"capacity": cap(channels.Raw),
	})
	EmitMetric(log, component, "event_buffer_length", len(channels.Events), "gauge", logger.Fields{
		"buffer":   "events",
		"capacity": cap(channels.Events),
	})
	bufferLength.WithLabelValues("raw").Set(float64(len(channels.Raw)))
	bufferLength.WithLabelValues("events").Set(float64(len(channels.Events)))
}
