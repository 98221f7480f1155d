package channel

import (
	"context"
	"sync"

	"birdeyeflow/logger"
	"birdeyeflow/models"
	"birdeyeflow/protocol"
)

type ChannelStats struct {
	RawSent       int64
	RawDropped    int64
	EventSent     int64
	EventDropped  int64
	ErrorsDropped int64
}

// Channels connects the stream reader to the decoder (Raw) and the decoder to
// its consumers (Events). Decode failures go to Errors.
type Channels struct {
	Raw    chan models.RawFrame
	Events chan protocol.Event
	Errors chan error

	stats      ChannelStats
	statsMutex sync.RWMutex
	closeOnce  sync.Once
	log        *logger.Log
}

func NewChannels(rawBufferSize, eventBufferSize int) *Channels {
	log := logger.GetLogger()
	c := &Channels{
		Raw:    make(chan models.RawFrame, rawBufferSize),
		Events: make(chan protocol.Event, eventBufferSize),
		Errors: make(chan error, eventBufferSize),
		log:    log,
	}

	log.WithComponent("stream_channels").WithFields(logger.Fields{
		"raw_buffer_size":   rawBufferSize,
		"event_buffer_size": eventBufferSize,
	}).Info("stream channels initialized")

	return c
}

// Close closes every channel. It is safe to call more than once.
func (c *Channels) Close() {
	c.closeOnce.Do(func() {
		close(c.Raw)
		close(c.Events)
		close(c.Errors)
		c.log.WithComponent("stream_channels").Info("stream channels closed")
	})
}

func (c *Channels) update(fn func(*ChannelStats)) {
	c.statsMutex.Lock()
	fn(&c.stats)
	c.statsMutex.Unlock()
}

// SendRaw enqueues a frame without blocking. A full buffer drops the frame.
func (c *Channels) SendRaw(ctx context.Context, frame models.RawFrame) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}
	select {
	case c.Raw <- frame:
		c.update(func(s *ChannelStats) { s.RawSent++ })
		return true
	default:
		c.update(func(s *ChannelStats) { s.RawDropped++ })
		return false
	}
}

// SendEvent enqueues a decoded event without blocking. A full buffer drops
// the event.
func (c *Channels) SendEvent(ctx context.Context, ev protocol.Event) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}
	select {
	case c.Events <- ev:
		c.update(func(s *ChannelStats) { s.EventSent++ })
		return true
	default:
		c.update(func(s *ChannelStats) { s.EventDropped++ })
		return false
	}
}

// SendError reports a decode failure without blocking.
func (c *Channels) SendError(err error) bool {
	select {
	case c.Errors <- err:
		return true
	default:
		c.update(func(s *ChannelStats) { s.ErrorsDropped++ })
		return false
	}
}

func (c *Channels) GetStats() ChannelStats {
	c.statsMutex.RLock()
	defer c.statsMutex.RUnlock()
	return c.stats
}
