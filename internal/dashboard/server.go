package dashboard

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"birdeyeflow/config"
	"birdeyeflow/internal/metrics"
	"birdeyeflow/logger"
	"birdeyeflow/protocol"
)

// StatsFunc reports a component's counters for the /api/stats endpoint.
type StatsFunc func() interface{}

// Server hosts the monitoring API: recent stream events, metric events, logs,
// host resource samples and component counters.
type Server struct {
	cfg             config.DashboardConfig
	log             *logger.Log
	metricStore     *metricStore
	logStore        *logStore
	eventStore      *eventStore
	metricHandler   metrics.MetricHandlerID
	httpServer      *http.Server
	resourceSampler *resourceSampler
	started         time.Time

	statsMu sync.RWMutex
	stats   map[string]StatsFunc
}

// NewServer returns nil when the dashboard is disabled.
func NewServer(cfg config.DashboardConfig, log *logger.Log) (*Server, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	cfg.Address = normalizeAddress(cfg.Address)
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 5 * time.Second
	}

	metricStore := newMetricStore(cfg.MetricsHistory)
	handlerID := metrics.RegisterMetricHandler(metricStore.handle)

	logStore := newLogStore(cfg.LogHistory)
	log.AddHook(logStore)

	return &Server{
		cfg:             cfg,
		log:             log,
		metricStore:     metricStore,
		logStore:        logStore,
		eventStore:      newEventStore(cfg.EventHistory),
		metricHandler:   handlerID,
		resourceSampler: newResourceSampler(cfg.MetricsHistory, cfg.RefreshInterval, "/", log),
		started:         time.Now(),
		stats:           make(map[string]StatsFunc),
	}, nil
}

// RecordEvent keeps ev in the recent event history. It is a no-op on a nil
// server so callers need not check whether the dashboard is enabled.
func (s *Server) RecordEvent(ev protocol.Event) {
	if s == nil || ev == nil {
		return
	}
	s.eventStore.record(ev, time.Now())
}

// AddStats exposes fn under name on /api/stats.
func (s *Server) AddStats(name string, fn StatsFunc) {
	if s == nil || fn == nil {
		return
	}
	s.statsMu.Lock()
	s.stats[name] = fn
	s.statsMu.Unlock()
}

// Run serves until ctx is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context, appName string) error {
	if s == nil {
		return nil
	}
	defer s.cleanup()

	s.resourceSampler.start(ctx)
	s.httpServer = &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.buildRouter(appName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.log.WithComponent("dashboard").WithFields(logger.Fields{"addr": s.cfg.Address}).Info("starting dashboard")

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) cleanup() {
	metrics.UnregisterMetricHandler(s.metricHandler)
	s.logStore.close()
	s.resourceSampler.stop()
}

func (s *Server) Address() string {
	if s == nil {
		return ""
	}
	return s.cfg.Address
}

func (s *Server) buildRouter(appName string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"app":                 appName,
			"status":              "ok",
			"uptime_seconds":      int64(time.Since(s.started) / time.Second),
			"refresh_interval_ms": int64(s.cfg.RefreshInterval / time.Millisecond),
		})
	})

	api := router.Group("/api")

	api.GET("/events", func(c *gin.Context) {
		t := protocol.ResponseType(c.Query("type"))
		if t != "" && !t.Known() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event type " + string(t)})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"events": s.eventStore.byType(t),
			"totals": s.eventStore.totals(),
		})
	})

	api.GET("/metrics", func(c *gin.Context) {
		snapshot := s.metricStore.snapshot()
		payload := make([]gin.H, 0, len(snapshot))
		for _, m := range snapshot {
			payload = append(payload, gin.H{
				"timestamp": m.Timestamp.Format(time.RFC3339Nano),
				"component": m.Component,
				"name":      m.Name,
				"value":     m.Value,
				"type":      m.Type,
				"fields":    m.Fields,
			})
		}
		c.JSON(http.StatusOK, gin.H{"metrics": payload})
	})

	api.GET("/logs", func(c *gin.Context) {
		records := s.logStore.snapshot()
		if level := strings.ToLower(c.Query("level")); level != "" {
			filtered := records[:0]
			for _, r := range records {
				if r.Level == level {
					filtered = append(filtered, r)
				}
			}
			records = filtered
		}
		c.JSON(http.StatusOK, gin.H{"logs": records})
	})

	api.GET("/resources", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"resources": s.resourceSampler.snapshot()})
	})

	api.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"stats": s.collectStats()})
	})

	return router
}

func (s *Server) collectStats() map[string]interface{} {
	s.statsMu.RLock()
	names := make([]string, 0, len(s.stats))
	for name := range s.stats {
		names = append(names, name)
	}
	sort.Strings(names)
	fns := make([]StatsFunc, len(names))
	for i, name := range names {
		fns[i] = s.stats[name]
	}
	s.statsMu.RUnlock()

	out := make(map[string]interface{}, len(names))
	for i, name := range names {
		out[name] = fns[i]()
	}
	return out
}

func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "0.0.0.0:8080"
	}

	if strings.Contains(addr, "://") {
		if parsed, err := url.Parse(addr); err == nil {
			if host := parsed.Host; host != "" {
				addr = host
			} else if parsed.Opaque != "" {
				addr = parsed.Opaque
			}
		}
	}

	if strings.HasPrefix(addr, ":") && len(addr) > 1 && addr[1] >= '0' && addr[1] <= '9' {
		return "0.0.0.0" + addr
	}

	if host, port, err := net.SplitHostPort(addr); err == nil {
		if host == "" || host == "*" {
			host = "0.0.0.0"
		}
		if port == "" {
			port = "8080"
		}
		return net.JoinHostPort(host, port)
	}

	if ip := net.ParseIP(addr); ip != nil || !strings.Contains(addr, ":") {
		return net.JoinHostPort(addr, "8080")
	}
	return addr
}
