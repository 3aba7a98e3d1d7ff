package daemon

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/realtyai/internal/api"
	"github.com/theirongolddev/realtyai/internal/forecast"
	"github.com/theirongolddev/realtyai/internal/source"
)

// abortDetail writes the service's error body.
func abortDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// statusFor maps a source error onto an HTTP status.
func statusFor(err error) int {
	var ae *api.APIError
	switch {
	case errors.Is(err, source.ErrRegionNotFound), api.IsNotFound(err):
		return http.StatusNotFound
	case forecast.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ae):
		return ae.StatusCode
	}
	return http.StatusInternalServerError
}

func (s *Service) finish(c *gin.Context, ev Event, start time.Time, err error) {
	ev.Timestamp = time.Now()
	ev.DurationMs = time.Since(start).Milliseconds()
	ev.Status = http.StatusOK
	if err != nil {
		ev.Status = statusFor(err)
		ev.Error = err.Error()
		abortDetail(c, ev.Status, ev.Error)
	}
	s.metrics.observe(ev.Type, ev.Status, time.Since(start))
	s.record(ev)
}

func (s *Service) handleRegions(c *gin.Context) {
	start := time.Now()
	regions, err := s.cfg.Source.Regions(c.Request.Context())
	s.finish(c, Event{Type: "available_regions"}, start, err)
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, api.RegionsResponse{Regions: regions})
}

func (s *Service) handleForecast(c *gin.Context) {
	start := time.Now()
	var req api.ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.finish(c, Event{Type: "forecast"}, start, &forecast.ValidationError{Field: "body", Message: err.Error()})
		return
	}
	req.Region = strings.TrimSpace(req.Region)

	raw, err := s.cfg.Source.Forecast(c.Request.Context(), req.Region, req.Horizon)
	s.finish(c, Event{Type: "forecast", Region: req.Region, Horizon: req.Horizon}, start, err)
	if err != nil {
		return
	}
	s.metrics.horizon.Observe(float64(req.Horizon))

	resp := api.ForecastResponse{
		Historical:       make([]api.HistoricalRecord, len(raw.Historical)),
		Forecast:         make([]api.ForecastRecord, len(raw.Forecast)),
		LastTrainingDate: raw.TrainedThrough,
	}
	for i, p := range raw.Historical {
		resp.Historical[i] = api.HistoricalRecord{Month: p.Period, Price: p.Value}
	}
	for i, p := range raw.Forecast {
		resp.Forecast[i] = api.ForecastRecord{Month: p.Period, Price: p.Value, LowerBound: p.Lower, UpperBound: p.Upper}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Service) handlePredict(c *gin.Context) {
	start := time.Now()
	var req api.PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.finish(c, Event{Type: "predict_price"}, start, &forecast.ValidationError{Field: "body", Message: err.Error()})
		return
	}

	resp, err := s.cfg.Source.PredictPrice(c.Request.Context(), req)
	s.finish(c, Event{Type: "predict_price", Region: req.City}, start, err)
	if err != nil {
		return
	}
	resp.PropertyData = &req
	c.JSON(http.StatusOK, resp)
}

func (s *Service) handleStatistics(c *gin.Context) {
	start := time.Now()
	var req api.StatisticsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.finish(c, Event{Type: "region_statistics"}, start, &forecast.ValidationError{Field: "body", Message: err.Error()})
		return
	}

	st, err := s.cfg.Source.RegionStatistics(c.Request.Context(), req.Region)
	s.finish(c, Event{Type: "region_statistics", Region: req.Region}, start, err)
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, api.StatisticsResponse{
		Region:       st.Region,
		TotalRecords: st.TotalRecords,
		DateRange:    st.DateRange,
		LatestZHVI:   st.Latest,
		Mean:         st.Mean,
		Std:          st.Std,
		Min:          st.Min,
		Max:          st.Max,
	})
}

// requestLogger logs every request through logrus.
func (s *Service) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := s.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).Round(time.Microsecond),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request")
	}
}
