package metrics

import (
	"strings"
	"sync/atomic"

	"birdeyeflow/config"
)

// Feature is an optional group of metrics that can be switched off in config.
type Feature string

const (
	FeatureChannelSize Feature = "channel_size"
)

var channelSizeEnabled atomic.Bool

func init() {
	channelSizeEnabled.Store(true)
}

// Configure applies the metrics section of the configuration.
func Configure(cfg config.MetricsConfig) {
	channelSizeEnabled.Store(cfg.ChannelSize)
}

func IsFeatureEnabled(f Feature) bool {
	switch f {
	case FeatureChannelSize:
		return channelSizeEnabled.Load()
	default:
		return true
	}
}

func metricEnabled(name string) bool {
	if strings.HasSuffix(name, "_buffer_length") {
		return IsFeatureEnabled(FeatureChannelSize)
	}
	return true
}
