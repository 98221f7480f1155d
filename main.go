package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"birdeyeflow/config"
	"birdeyeflow/internal/channel"
	"birdeyeflow/internal/dashboard"
	"birdeyeflow/internal/metrics"
	"birdeyeflow/logger"
	"birdeyeflow/processor"
	"birdeyeflow/protocol"
	"birdeyeflow/reader/birdeye"
	"birdeyeflow/writer"
)

const defaultConfigPath = "config/config.yml"

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	path := config.ResolvePath(*configPath, defaultConfigPath)
	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.WithError(err).WithFields(logger.Fields{"path": path}).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	subs, err := cfg.BuildSubscriptions()
	if err != nil {
		log.WithError(err).Error("Invalid subscriptions")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service":       cfg.App.Name,
		"version":       cfg.App.Version,
		"environment":   config.AppEnvironment(),
		"chain":         cfg.Birdeye.Chain,
		"subscriptions": len(subs),
	}).Info("starting birdeyeflow")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Logging.CloudWatch.Enabled {
		logger.InitCloudWatch(ctx, cfg.Logging.CloudWatch.Region, cfg.Logging.CloudWatch.Namespace, cfg.Logging.CloudWatch.Dashboard)
	}
	if logger.IsReportLevel(cfg.Logging.Level) {
		logger.StartReport(ctx, log, cfg.Logging.ReportInterval)
	}

	metrics.Configure(cfg.Metrics)

	channels := channel.NewChannels(cfg.Channels.RawBuffer, cfg.Channels.EventBuffer)
	defer channels.Close()

	metrics.StartChannelSizeMetrics(ctx, channels, cfg.Metrics.ChannelSizeInterval)

	reader := birdeye.NewReader(cfg, channels, subs)
	decoder := processor.NewDecoder(cfg, channels)

	dash, err := dashboard.NewServer(cfg.Dashboard, log)
	if err != nil {
		log.WithError(err).Error("Failed to create dashboard")
		os.Exit(1)
	}
	dash.AddStats("channels", func() interface{} { return channels.GetStats() })
	dash.AddStats("decoder", func() interface{} {
		decoded, failed := decoder.Stats()
		return map[string]int64{"decoded": decoded, "failed": failed}
	})

	g, gctx := errgroup.WithContext(ctx)

	if dash != nil {
		g.Go(func() error {
			return dash.Run(gctx, cfg.App.Name)
		})
	}

	if cfg.Metrics.Prometheus.Enabled {
		g.Go(func() error {
			return metrics.Serve(gctx, cfg.Metrics.Prometheus.Addr)
		})
	}

	if err := decoder.Start(gctx); err != nil {
		log.WithError(err).Error("decoder failed to start")
		os.Exit(1)
	}
	if err := reader.Start(gctx); err != nil {
		log.WithError(err).Error("reader failed to start")
		os.Exit(1)
	}

	var sink chan protocol.Event
	var kafkaWriter *writer.KafkaWriter
	if cfg.Kafka.Enabled {
		sink = make(chan protocol.Event, cfg.Kafka.Buffer)
		kafkaWriter, err = writer.NewKafkaWriter(cfg, sink)
		if err != nil {
			log.WithError(err).Error("Failed to create kafka writer")
			os.Exit(1)
		}
		if err := kafkaWriter.Start(gctx); err != nil {
			log.WithError(err).Error("kafka writer failed to start")
			os.Exit(1)
		}
	}

	g.Go(func() error {
		consume(gctx, channels, dash, sink, cfg.Processor.LogEvents)
		return nil
	})

	log.Info("all components started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.WithFields(logger.Fields{"signal": sig.String()}).Info("shutdown signal received")
	case <-gctx.Done():
		log.Warn("a component stopped unexpectedly")
	}

	log.Info("starting graceful shutdown")
	cancel()

	log.Info("stopping reader")
	reader.Stop()

	log.Info("stopping decoder")
	decoder.Stop()

	if kafkaWriter != nil {
		log.Info("stopping kafka writer")
		kafkaWriter.Stop()
	}

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			log.WithError(err).Warn("component returned an error during shutdown")
		}
		log.Info("graceful shutdown completed")
	case <-time.After(30 * time.Second):
		log.Warn("graceful shutdown timeout exceeded")
	}

	log.Info("birdeyeflow stopped")
}

// consume drains decoded events and decode failures until ctx ends. Events are
// copied to sink when it is set; a full sink drops the event.
func consume(ctx context.Context, ch *channel.Channels, dash *dashboard.Server, sink chan<- protocol.Event, logEvents bool) {
	log := logger.GetLogger().WithComponent("consumer")
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch.Events:
			if !ok {
				return
			}
			logger.RecordChannelMessage("events", 1)
			dash.RecordEvent(ev)
			if sink != nil {
				select {
				case sink <- ev:
				default:
					metrics.EmitDropMetric(nil, metrics.DropMetricEvent, "", string(ev.Type()), "kafka")
				}
			}
			if logEvents {
				log.WithFields(logger.Fields{"type": string(ev.Type())}).WithFields(eventFields(ev)).Info("event")
			}
		case err, ok := <-ch.Errors:
			if !ok {
				return
			}
			log.WithError(err).WithFields(logger.Fields{"kind": protocol.KindOf(err).String()}).Warn("stream error")
		}
	}
}

func eventFields(ev protocol.Event) logger.Fields {
	switch e := ev.(type) {
	case protocol.PriceEvent:
		return logger.Fields{"address": e.Address, "close": e.Close, "unix_time": e.UnixTime}
	case protocol.BaseQuotePriceEvent:
		return logger.Fields{"base": e.BaseAddress, "quote": e.QuoteAddress, "close": e.Close}
	case protocol.TxsEvent:
		return logger.Fields{"tx_hash": e.TxHash, "volume_usd": e.VolumeUSD}
	case protocol.LargeTradeEvent:
		return logger.Fields{"tx_hash": e.TxHash, "volume_usd": e.VolumeUSD}
	case protocol.WalletTxsEvent:
		return logger.Fields{"tx_hash": e.TxHash, "owner": e.Owner}
	case protocol.NewPairEvent:
		return logger.Fields{"address": e.Address, "name": e.Name}
	case protocol.TokenListingEvent:
		return logger.Fields{"address": e.Address, "liquidity": e.Liquidity}
	case protocol.ErrorEvent:
		return logger.Fields{"error": string(e.Data)}
	}
	return logger.Fields{}
}
