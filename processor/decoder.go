package processor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	appconfig "birdeyeflow/config"
	"birdeyeflow/internal/channel"
	"birdeyeflow/internal/metrics"
	"birdeyeflow/logger"
	"birdeyeflow/models"
	"birdeyeflow/protocol"
)

// Decoder turns raw stream frames into typed events. A single worker keeps
// events in the order their frames arrived.
type Decoder struct {
	config   *appconfig.Config
	channels *channel.Channels
	ctx      context.Context
	wg       *sync.WaitGroup
	mu       sync.RWMutex
	running  bool
	log      *logger.Log

	decoded atomic.Int64
	failed  atomic.Int64
}

func NewDecoder(cfg *appconfig.Config, ch *channel.Channels) *Decoder {
	return &Decoder{
		config:   cfg,
		channels: ch,
		wg:       &sync.WaitGroup{},
		log:      logger.GetLogger(),
	}
}

// Start begins consuming the raw channel.
func (d *Decoder) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("decoder already running")
	}
	d.running = true
	d.ctx = ctx
	d.mu.Unlock()

	d.log.WithComponent("decoder").WithFields(logger.Fields{"operation": "Start"}).Info("starting decoder")

	d.wg.Add(1)
	go d.worker()

	d.wg.Add(1)
	go d.metricsReporter()
	return nil
}

// Stop waits for the worker to exit. The worker returns when the context is
// cancelled or the raw channel is closed.
func (d *Decoder) Stop() {
	d.mu.Lock()
	d.running = false
	d.mu.Unlock()

	d.log.WithComponent("decoder").Info("stopping decoder")
	d.wg.Wait()
	d.log.WithComponent("decoder").WithFields(logger.Fields{
		"decoded": d.decoded.Load(),
		"failed":  d.failed.Load(),
	}).Info("decoder stopped")
}

// Stats returns the number of frames decoded and rejected so far.
func (d *Decoder) Stats() (decoded, failed int64) {
	return d.decoded.Load(), d.failed.Load()
}

func (d *Decoder) worker() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return
		case frame, ok := <-d.channels.Raw:
			if !ok {
				return
			}
			d.handleFrame(frame)
		}
	}
}

func (d *Decoder) handleFrame(frame models.RawFrame) {
	ev, err := protocol.Decode(frame.Data)
	if err != nil {
		d.failed.Add(1)
		kind := protocol.KindOf(err)
		logger.IncrementDecodeError()
		metrics.IncDecodeError(kind.String())
		d.log.WithComponent("decoder").WithError(err).WithFields(logger.Fields{
			"session": frame.Session,
			"seq":     frame.Seq,
			"kind":    kind.String(),
		}).Warn("failed to decode frame")
		d.channels.SendError(err)
		return
	}

	d.decoded.Add(1)
	logger.IncrementEventDecoded()
	metrics.IncEventDecoded(string(ev.Type()))

	log := d.log.WithComponent("decoder").WithFields(logger.Fields{
		"session": frame.Session,
		"seq":     frame.Seq,
		"type":    string(ev.Type()),
	})
	if peer, ok := ev.(protocol.ErrorEvent); ok {
		log.WithError(peer.Err()).Warn("peer reported an error")
	} else if d.config.Processor.LogEvents {
		log.Debug("event decoded")
	}

	if !d.channels.SendEvent(d.ctx, ev) && d.ctx.Err() == nil {
		metrics.EmitDropMetric(d.log, metrics.DropMetricEvent, frame.Session, string(ev.Type()), "decoder")
	}
}

func (d *Decoder) metricsReporter() {
	defer d.wg.Done()
	interval := d.config.Logging.ReportInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastDecoded int64
	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			decoded := d.decoded.Load()
			logger.LogDataFlowEntry(d.log.WithComponent("decoder"), "raw_frames", "events", int(decoded-lastDecoded), "event")
			lastDecoded = decoded
		}
	}
}
