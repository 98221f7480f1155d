package logger

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	gnet "github.com/shirou/gopsutil/v3/net"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

type channelStat struct {
	messages int64
	bytes    int64
}

var (
	framesRead    int64
	eventsDecoded int64
	decodeErrors  int64
	reconnects    int64
	restCalls     int64

	warns    sync.Map // map[string]*int64, keyed by component
	errs     sync.Map // map[string]*int64, keyed by component
	channels sync.Map // map[string]*channelStat
)

func bump(m *sync.Map, key string) {
	v, _ := m.LoadOrStore(key, new(int64))
	atomic.AddInt64(v.(*int64), 1)
}

func recordWarn(component string)  { bump(&warns, component) }
func recordError(component string) { bump(&errs, component) }

// IncrementFrameRead counts one inbound websocket frame of size bytes.
func IncrementFrameRead(size int) {
	atomic.AddInt64(&framesRead, 1)
	recordChannel("stream_frames", size)
}

// IncrementEventDecoded counts one frame decoded into a typed event.
func IncrementEventDecoded() {
	atomic.AddInt64(&eventsDecoded, 1)
}

// IncrementDecodeError counts one frame that failed to decode.
func IncrementDecodeError() {
	atomic.AddInt64(&decodeErrors, 1)
}

// IncrementReconnect counts one stream reconnect attempt.
func IncrementReconnect() {
	atomic.AddInt64(&reconnects, 1)
}

// IncrementRestCall counts one REST response body of size bytes.
func IncrementRestCall(size int) {
	atomic.AddInt64(&restCalls, 1)
	recordChannel("rest_responses", size)
}

func RecordChannelMessage(name string, size int) {
	recordChannel(name, size)
}

func recordChannel(name string, size int) {
	v, _ := channels.LoadOrStore(name, &channelStat{})
	cs := v.(*channelStat)
	atomic.AddInt64(&cs.messages, 1)
	atomic.AddInt64(&cs.bytes, int64(size))
}

// StartReport begins periodic logging of system and stream statistics until
// ctx is cancelled.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logReport(ctx, log)
			}
		}
	}()
}

func snapshot(m *sync.Map) map[string]int64 {
	out := map[string]int64{}
	m.Range(func(k, v any) bool {
		out[k.(string)] = atomic.LoadInt64(v.(*int64))
		return true
	})
	return out
}

func reportFields() Fields {
	channelData := map[string]map[string]int64{}
	channels.Range(func(k, v any) bool {
		cs := v.(*channelStat)
		channelData[k.(string)] = map[string]int64{
			"messages": atomic.LoadInt64(&cs.messages),
			"bytes":    atomic.LoadInt64(&cs.bytes),
		}
		return true
	})

	return Fields{
		"frames_read":    atomic.LoadInt64(&framesRead),
		"events_decoded": atomic.LoadInt64(&eventsDecoded),
		"decode_errors":  atomic.LoadInt64(&decodeErrors),
		"reconnects":     atomic.LoadInt64(&reconnects),
		"rest_calls":     atomic.LoadInt64(&restCalls),
		"warns":          snapshot(&warns),
		"errors":         snapshot(&errs),
		"channels":       channelData,
		"goroutines":     runtime.NumGoroutine(),
	}
}

func logReport(ctx context.Context, log *Log) {
	fields := reportFields()

	cpuPct := 0.0
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		cpuPct = pct[0]
	}
	memUsed := 0.0
	if vm, err := mem.VirtualMemory(); err == nil {
		memUsed = float64(vm.Used) / 1024 / 1024
	}
	var bytesSent, bytesRecv uint64
	if netStats, err := gnet.IOCounters(false); err == nil && len(netStats) > 0 {
		bytesSent = netStats[0].BytesSent
		bytesRecv = netStats[0].BytesRecv
	}
	fields["cpu_percent"] = cpuPct
	fields["memory_mb"] = int64(memUsed)
	fields["net_bytes_sent"] = int64(bytesSent)
	fields["net_bytes_recv"] = int64(bytesRecv)

	log.WithComponent("report").WithFields(fields).Info("runtime report")

	count := func(name string, key string) cwtypes.MetricDatum {
		return cwtypes.MetricDatum{
			MetricName: aws.String(metricPrefix + name),
			Unit:       cwtypes.StandardUnitCount,
			Value:      aws.Float64(float64(fields[key].(int64))),
		}
	}
	data := []cwtypes.MetricDatum{
		{MetricName: aws.String(metricPrefix + "CPUPercent"), Unit: cwtypes.StandardUnitPercent, Value: aws.Float64(cpuPct)},
		{MetricName: aws.String(metricPrefix + "MemoryMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(memUsed)},
		{MetricName: aws.String(metricPrefix + "NetBytesSent"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesSent))},
		{MetricName: aws.String(metricPrefix + "NetBytesRecv"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesRecv))},
		count("FramesRead", "frames_read"),
		count("EventsDecoded", "events_decoded"),
		count("DecodeErrors", "decode_errors"),
		count("Reconnects", "reconnects"),
		count("RestCalls", "rest_calls"),
	}

	for name, stats := range fields["channels"].(map[string]map[string]int64) {
		dims := []cwtypes.Dimension{{Name: aws.String("Channel"), Value: aws.String(name)}}
		data = append(data,
			cwtypes.MetricDatum{
				MetricName: aws.String(metricPrefix + "ChannelMessages"),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: dims,
				Value:      aws.Float64(float64(stats["messages"])),
			},
			cwtypes.MetricDatum{
				MetricName: aws.String(metricPrefix + "ChannelBytes"),
				Unit:       cwtypes.StandardUnitBytes,
				Dimensions: dims,
				Value:      aws.Float64(float64(stats["bytes"])),
			},
		)
	}

	publishMetrics(ctx, data)
}
