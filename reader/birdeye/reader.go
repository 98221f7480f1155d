package birdeye

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	appconfig "birdeyeflow/config"
	"birdeyeflow/internal/channel"
	"birdeyeflow/internal/metrics"
	"birdeyeflow/logger"
	"birdeyeflow/protocol"
)

// Reader keeps one stream connection open, sends its subscriptions on every
// connect and forwards each frame to the raw channel. Lost connections are
// re-established with exponential backoff until the context is cancelled.
type Reader struct {
	config   *appconfig.Config
	channels *channel.Channels
	ctx      context.Context
	cancel   context.CancelFunc
	wg       *sync.WaitGroup
	mu       sync.RWMutex
	running  bool
	log      *logger.Log

	subs   []protocol.Subscription
	stream *Stream
}

func NewReader(cfg *appconfig.Config, ch *channel.Channels, subs []protocol.Subscription) *Reader {
	return &Reader{
		config:   cfg,
		channels: ch,
		wg:       &sync.WaitGroup{},
		log:      logger.GetLogger(),
		subs:     append([]protocol.Subscription(nil), subs...),
	}
}

// Start launches the connection loop in the background.
func (r *Reader) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("birdeye reader already running")
	}
	r.running = true
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()

	log := r.log.WithComponent("birdeye_reader").WithFields(logger.Fields{
		"operation":     "Start",
		"chain":         r.config.Birdeye.Chain,
		"subscriptions": len(r.subscriptions()),
	})
	log.Info("starting birdeye stream reader")

	r.wg.Add(1)
	go r.run()
	return nil
}

// Stop closes the connection and waits for the reader to exit.
func (r *Reader) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	cancel := r.cancel
	r.mu.Unlock()

	r.log.WithComponent("birdeye_reader").Info("stopping birdeye stream reader")
	cancel()
	r.wg.Wait()
	r.log.WithComponent("birdeye_reader").Info("birdeye stream reader stopped")
}

// Subscribe sends sub on the live connection and remembers it for later
// reconnects. An unsubscribe forgets the stored subscriptions it covers. The
// lock is held across the send so a connect in progress either sees sub in
// its snapshot or publishes the stream before sub is sent.
func (r *Reader) Subscribe(sub protocol.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stream != nil {
		if err := r.stream.Subscribe(sub); err != nil {
			return err
		}
	} else if sub.Type() == protocol.SubscribeBaseQuotePrice {
		for _, s := range r.subs {
			if s.Type() == protocol.SubscribeBaseQuotePrice {
				return protocol.ValidationError("subscribe", "type", "a base-quote subscription is already registered")
			}
		}
	}

	if unsub, ok := sub.(protocol.Unsubscribe); ok {
		kept := r.subs[:0]
		for _, s := range r.subs {
			if !unsub.Covers(s) {
				kept = append(kept, s)
			}
		}
		r.subs = kept
		return nil
	}
	r.subs = append(r.subs, sub)
	return nil
}

func (r *Reader) subscriptions() []protocol.Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]protocol.Subscription(nil), r.subs...)
}

func (r *Reader) newBackOff() backoff.BackOff {
	retry := r.config.Reader.Retry
	bo := backoff.NewExponentialBackOff()
	if retry.BaseDelay > 0 {
		bo.InitialInterval = retry.BaseDelay
	}
	if retry.MaxDelay > 0 {
		bo.MaxInterval = retry.MaxDelay
	}
	if retry.Multiplier > 0 {
		bo.Multiplier = retry.Multiplier
	}
	bo.MaxElapsedTime = retry.MaxElapsed
	return backoff.WithContext(bo, r.ctx)
}

func (r *Reader) run() {
	defer r.wg.Done()
	log := r.log.WithComponent("birdeye_reader").WithFields(logger.Fields{"worker": "stream"})

	for r.ctx.Err() == nil {
		var stream *Stream
		attempt := 0
		connect := func() error {
			attempt++
			s, err := r.connect()
			if err != nil {
				return err
			}
			stream = s
			return nil
		}
		notify := func(err error, delay time.Duration) {
			logger.IncrementReconnect()
			metrics.IncReconnect()
			log.WithError(err).WithFields(logger.Fields{"attempt": attempt, "delay": delay.String()}).Warn("stream connect failed, retrying")
		}

		if err := backoff.RetryNotify(connect, r.newBackOff(), notify); err != nil {
			if r.ctx.Err() != nil {
				return
			}
			log.WithError(err).WithFields(logger.Fields{"attempts": attempt}).Error("giving up on stream connection")
			r.mu.Lock()
			r.running = false
			r.cancel()
			r.mu.Unlock()
			r.channels.SendError(err)
			return
		}

		err := r.consume(stream)
		if r.ctx.Err() != nil {
			return
		}
		logger.IncrementReconnect()
		metrics.IncReconnect()
		log.WithError(err).WithFields(logger.Fields{"session": stream.Session()}).Warn("stream read failed, reconnecting")
	}
}

// connect dials and sends every stored subscription. Validation failures are
// permanent; anything else is retried.
func (r *Reader) connect() (*Stream, error) {
	cfg := r.config
	stream, err := Dial(r.ctx, DialOptions{
		URL:              cfg.Birdeye.WSURL,
		Chain:            cfg.Birdeye.Chain,
		APIKey:           cfg.Birdeye.APIKey,
		HandshakeTimeout: cfg.Reader.HandshakeTimeout,
		WriteTimeout:     cfg.Reader.WriteTimeout,
		LocalIP:          cfg.Reader.LocalIP,
	})
	if err != nil {
		if protocol.KindOf(err) == protocol.KindURL {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	// The stream is published in the same critical section that sends the
	// stored subscriptions, so a concurrent Subscribe is never skipped.
	r.mu.Lock()
	subs := append([]protocol.Subscription(nil), r.subs...)
	for _, sub := range subs {
		if err := stream.Subscribe(sub); err != nil {
			r.mu.Unlock()
			stream.Close()
			if protocol.KindOf(err) == protocol.KindValidation {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
	}
	r.stream = stream
	r.mu.Unlock()

	r.log.WithComponent("birdeye_reader").WithFields(logger.Fields{
		"session":       stream.Session(),
		"subscriptions": len(subs),
	}).Info("stream connected")
	return stream, nil
}

// consume reads frames until the connection fails or the context ends.
func (r *Reader) consume(stream *Stream) error {
	done := make(chan struct{})
	defer func() {
		close(done)
		r.mu.Lock()
		if r.stream == stream {
			r.stream = nil
		}
		r.mu.Unlock()
		stream.Close()
	}()

	if err := stream.KeepAlive(r.config.Reader.ReadTimeout); err != nil {
		return protocol.TransportError("keepalive", err)
	}

	go r.keepAlive(stream, done)

	for {
		frame, err := stream.ReadFrame()
		if err != nil {
			return err
		}
		logger.IncrementFrameRead(len(frame.Data))
		metrics.IncFramesReceived()

		if !r.channels.SendRaw(r.ctx, frame) {
			if r.ctx.Err() != nil {
				return r.ctx.Err()
			}
			metrics.EmitDropMetric(r.log, metrics.DropMetricRawFrame, frame.Session, "", "reader")
		}
	}
}

// keepAlive pings on every interval and closes the connection once the
// context ends so ReadFrame returns.
func (r *Reader) keepAlive(stream *Stream, done <-chan struct{}) {
	interval := r.config.Reader.PingInterval
	if interval <= 0 {
		interval = 20 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.ctx.Done():
			stream.conn.Close()
			return
		case <-ticker.C:
			if err := stream.Ping(); err != nil {
				r.log.WithComponent("birdeye_reader").WithError(err).Debug("ping failed")
			}
		}
	}
}
