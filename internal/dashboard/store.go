package dashboard

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"birdeyeflow/internal/metrics"
	"birdeyeflow/protocol"
)

// ring retains the most recent limit items. It is safe for concurrent use.
type ring[T any] struct {
	mu    sync.RWMutex
	items []T
	limit int
}

func newRing[T any](limit int) *ring[T] {
	if limit <= 0 {
		limit = 200
	}
	return &ring[T]{limit: limit}
}

func (r *ring[T]) push(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, item)
	if len(r.items) > r.limit {
		// keep the most recent entries only
		r.items = append([]T(nil), r.items[len(r.items)-r.limit:]...)
	}
}

func (r *ring[T]) snapshot() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

// metricStore keeps the latest metric events emitted through the metrics
// package.
type metricStore struct {
	*ring[metrics.Metric]
}

func newMetricStore(limit int) *metricStore {
	return &metricStore{ring: newRing[metrics.Metric](limit)}
}

func (s *metricStore) handle(metric metrics.Metric) {
	s.push(metric)
}

// eventRecord is the serialisable summary of one decoded stream event.
type eventRecord struct {
	Timestamp time.Time              `json:"timestamp"`
	Type      protocol.ResponseType  `json:"type"`
	Event     protocol.Event         `json:"event"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

type eventStore struct {
	*ring[eventRecord]
	counts sync.Map
}

func newEventStore(limit int) *eventStore {
	return &eventStore{ring: newRing[eventRecord](limit)}
}

func (s *eventStore) record(ev protocol.Event, at time.Time) {
	rec := eventRecord{Timestamp: at, Type: ev.Type(), Event: ev}
	if peer, ok := ev.(protocol.ErrorEvent); ok {
		rec.Fields = map[string]interface{}{"error": peer.Err().Error()}
	}
	s.push(rec)

	v, _ := s.counts.LoadOrStore(ev.Type(), new(atomic.Int64))
	v.(*atomic.Int64).Add(1)
}

// byType returns the retained events of one response type, or all of them
// when t is empty.
func (s *eventStore) byType(t protocol.ResponseType) []eventRecord {
	all := s.snapshot()
	if t == "" {
		return all
	}
	out := make([]eventRecord, 0, len(all))
	for _, rec := range all {
		if rec.Type == t {
			out = append(out, rec)
		}
	}
	return out
}

func (s *eventStore) totals() map[string]int64 {
	out := make(map[string]int64)
	s.counts.Range(func(k, v any) bool {
		out[string(k.(protocol.ResponseType))] = v.(*atomic.Int64).Load()
		return true
	})
	return out
}

// logRecord is the serialisable form of a captured log entry.
type logRecord struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Component string                 `json:"component,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// logStore is a logrus hook keeping the latest log entries.
type logStore struct {
	*ring[logRecord]
	enabled atomic.Bool
}

func newLogStore(limit int) *logStore {
	ls := &logStore{ring: newRing[logRecord](limit)}
	ls.enabled.Store(true)
	return ls
}

func (s *logStore) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (s *logStore) Fire(entry *logrus.Entry) error {
	if !s.enabled.Load() {
		return nil
	}

	record := logRecord{
		Timestamp: entry.Time,
		Level:     entry.Level.String(),
		Message:   entry.Message,
	}
	if component, ok := entry.Data["component"].(string); ok {
		record.Component = component
	}

	if len(entry.Data) > 0 {
		record.Fields = make(map[string]interface{}, len(entry.Data))
		for k, v := range entry.Data {
			if k == "component" {
				continue
			}
			switch val := v.(type) {
			case error:
				record.Fields[k] = val.Error()
			case fmt.Stringer:
				record.Fields[k] = val.String()
			default:
				record.Fields[k] = val
			}
		}
	}

	s.push(record)
	return nil
}

func (s *logStore) close() {
	s.enabled.Store(false)
}
