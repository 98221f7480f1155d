package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	kafka "github.com/segmentio/kafka-go"

	appconfig "birdeyeflow/config"
	"birdeyeflow/logger"
	"birdeyeflow/protocol"
)

// messageWriter is the subset of *kafka.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaWriter forwards decoded events to a Kafka topic, one message per
// event in the inbound {"type","data"} shape.
type KafkaWriter struct {
	config  *appconfig.Config
	events  <-chan protocol.Event
	writer  messageWriter
	ctx     context.Context
	wg      *sync.WaitGroup
	mu      sync.RWMutex
	running bool
	log     *logger.Log

	written int64
	failed  int64
}

func NewKafkaWriter(cfg *appconfig.Config, events <-chan protocol.Event) (*KafkaWriter, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not configured")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.Kafka.BatchSize,
		BatchTimeout: cfg.Kafka.BatchTimeout,
	}
	kw := newKafkaWriter(cfg, events, w)
	kw.log.WithComponent("kafka_writer").WithFields(logger.Fields{
		"brokers": cfg.Kafka.Brokers,
		"topic":   cfg.Kafka.Topic,
	}).Debug("kafka writer initialized")
	return kw, nil
}

func newKafkaWriter(cfg *appconfig.Config, events <-chan protocol.Event, w messageWriter) *KafkaWriter {
	return &KafkaWriter{
		config: cfg,
		events: events,
		writer: w,
		wg:     &sync.WaitGroup{},
		log:    logger.GetLogger(),
	}
}

func (kw *KafkaWriter) Start(ctx context.Context) error {
	kw.mu.Lock()
	if kw.running {
		kw.mu.Unlock()
		return fmt.Errorf("kafka writer already running")
	}
	kw.running = true
	kw.ctx = ctx
	kw.mu.Unlock()

	kw.log.WithComponent("kafka_writer").Info("starting kafka writer")

	kw.wg.Add(1)
	go kw.run()
	return nil
}

func (kw *KafkaWriter) run() {
	defer kw.wg.Done()
	log := kw.log.WithComponent("kafka_writer")

	for {
		select {
		case <-kw.ctx.Done():
			return
		case ev, ok := <-kw.events:
			if !ok {
				return
			}
			msg, err := eventMessage(ev)
			if err != nil {
				log.WithError(err).Warn("failed to marshal event")
				continue
			}

			start := time.Now()
			if err := kw.writer.WriteMessages(kw.ctx, msg); err != nil {
				kw.mu.Lock()
				kw.failed++
				kw.mu.Unlock()
				log.WithError(err).WithFields(logger.Fields{"type": string(ev.Type())}).Warn("failed to write message")
				continue
			}
			kw.mu.Lock()
			kw.written++
			kw.mu.Unlock()
			log.WithFields(logger.Fields{
				"type":        string(ev.Type()),
				"duration_ms": time.Since(start).Milliseconds(),
			}).Debug("event written to kafka")
		}
	}
}

// Stop waits for the writer loop to exit and closes the Kafka connection.
func (kw *KafkaWriter) Stop() {
	kw.mu.Lock()
	kw.running = false
	kw.mu.Unlock()

	kw.log.WithComponent("kafka_writer").Info("stopping kafka writer")
	kw.wg.Wait()
	if err := kw.writer.Close(); err != nil {
		kw.log.WithComponent("kafka_writer").WithError(err).Warn("failed to close kafka writer")
	}
	kw.log.WithComponent("kafka_writer").WithFields(kw.Stats()).Info("kafka writer stopped")
}

func (kw *KafkaWriter) Stats() logger.Fields {
	kw.mu.RLock()
	defer kw.mu.RUnlock()
	return logger.Fields{"written": kw.written, "failed": kw.failed}
}

type envelope struct {
	Type protocol.ResponseType `json:"type"`
	Data interface{}           `json:"data"`
}

func eventMessage(ev protocol.Event) (kafka.Message, error) {
	var data interface{} = ev
	if peer, ok := ev.(protocol.ErrorEvent); ok {
		data = peer.Data
	}
	value, err := json.Marshal(envelope{Type: ev.Type(), Data: data})
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:     []byte(partitionKey(ev)),
		Value:   value,
		Headers: []kafka.Header{{Key: "type", Value: []byte(ev.Type())}},
	}, nil
}

// partitionKey keeps events about the same token, pair or wallet on one
// partition.
func partitionKey(ev protocol.Event) string {
	switch e := ev.(type) {
	case protocol.PriceEvent:
		return e.Address
	case protocol.BaseQuotePriceEvent:
		return e.BaseAddress + "/" + e.QuoteAddress
	case protocol.TxsEvent:
		return e.From.Address
	case protocol.LargeTradeEvent:
		return e.PoolAddress
	case protocol.WalletTxsEvent:
		return e.Owner
	case protocol.NewPairEvent:
		return e.Address
	case protocol.TokenListingEvent:
		return e.Address
	}
	return string(ev.Type())
}
