// Package daemon provides a local stand-in for the prediction service: the
// same REST contract served from a data source, plus status, event and
// metrics endpoints.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/realtyai/internal/source"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int
	Source       source.Source
	Logger       *logrus.Logger
	// Registry receives the service metrics. Nil uses a private registry.
	Registry *prometheus.Registry
}

// Counters tallies served requests.
type Counters struct {
	Forecasts   int64 `json:"forecasts"`
	Predictions int64 `json:"predictions"`
	Statistics  int64 `json:"statistics"`
	Regions     int64 `json:"regions"`
	Errors      int64 `json:"errors"`
}

// Event is emitted for every served API request.
type Event struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	Region     string    `json:"region,omitempty"`
	Horizon    int       `json:"horizon,omitempty"`
	Status     int       `json:"status"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastRequestAt   time.Time `json:"last_request_at,omitempty"`
	Source          string    `json:"source"`
	Addr            string    `json:"addr"`
	Counters        Counters  `json:"counters"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	log     *logrus.Logger
	metrics *metrics

	mu            sync.RWMutex
	startedAt     time.Time
	lastRequestAt time.Time
	lastError     string
	counters      Counters
	nextEventID   int64
	events        []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8000"
	}
	if cfg.Source == nil {
		cfg.Source = source.NewSynthetic(0)
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Service{
		cfg:       cfg,
		log:       log,
		metrics:   newMetrics(cfg.Registry),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler builds the HTTP router.
func (s *Service) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/available_regions", s.handleRegions)
	r.POST("/forecast", s.handleForecast)
	r.POST("/predict_price", s.handlePredict)
	r.POST("/region_statistics", s.handleStatistics)

	r.GET("/healthz", s.handleHealth)
	r.GET("/v1/status", s.handleStatus)
	r.GET("/v1/events", s.handleEvents)
	r.GET("/v1/stream", s.handleStream)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.cfg.Registry, promhttp.HandlerOpts{})))
	return r
}

// Run serves HTTP until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.WithFields(logrus.Fields{"addr": s.cfg.Addr, "source": s.cfg.Source.Name()}).Info("daemon listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// record updates counters and publishes an event for one served request.
func (s *Service) record(ev Event) {
	s.mu.Lock()
	s.lastRequestAt = ev.Timestamp
	switch ev.Type {
	case "forecast":
		s.counters.Forecasts++
	case "predict_price":
		s.counters.Predictions++
	case "region_statistics":
		s.counters.Statistics++
	case "available_regions":
		s.counters.Regions++
	}
	if ev.Error != "" {
		s.counters.Errors++
		s.lastError = ev.Error
	}
	s.nextEventID++
	ev.ID = s.nextEventID
	s.publishEventLocked(ev)
	s.mu.Unlock()
}

// publishEventLocked appends to the ring and fans out to subscribers. The
// caller holds s.mu so event IDs enter the ring in order.
func (s *Service) publishEventLocked(ev Event) {
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastRequestAt:   s.lastRequestAt,
		Source:          s.cfg.Source.Name(),
		Addr:            s.cfg.Addr,
		Counters:        s.counters,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}

func (s *Service) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(c *gin.Context) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	c.JSON(http.StatusOK, events)
}

func (s *Service) handleStream(c *gin.Context) {
	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	writeSSE(w, "status", s.snapshotStatus())
	w.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ch:
			writeSSE(w, ev.Type, ev)
			w.Flush()
		}
	}
}

func writeSSE(w gin.ResponseWriter, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", event)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
